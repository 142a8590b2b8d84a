// Package knowledge serves film theory and reference-work inspirations.
// Providers subscribe to state changes and publish whatever the current
// keyword set makes relevant.
package knowledge

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed theory_database.yaml
var embeddedTheoryCorpus []byte

//go:embed work_database.yaml
var embeddedWorkCorpus []byte

type ApplyTip struct {
	Title   string `yaml:"title"`
	Tip     string `yaml:"tip"`
	Example string `yaml:"example,omitempty"`
}

type TheoryEntry struct {
	Name             string     `yaml:"name"`
	Category         string     `yaml:"category"`
	Description      string     `yaml:"description"`
	Keywords         []string   `yaml:"keywords"`
	RelatedDirectors []string   `yaml:"related_directors"`
	HowToApply       []ApplyTip `yaml:"how_to_apply"`
	WhenToUse        []string   `yaml:"when_to_use"`
	CommonMistakes   []string   `yaml:"common_mistakes"`
}

type TheoryCorpus struct {
	Theories []TheoryEntry `yaml:"theories"`
}

type WorkEntry struct {
	Title             string            `yaml:"title"`
	Year              int               `yaml:"year"`
	Theme             string            `yaml:"theme"`
	SceneDescription  string            `yaml:"scene_description"`
	Keywords          []string          `yaml:"keywords"`
	StructureAnalysis map[string]string `yaml:"structure_analysis"`
	ActionableTips    []string          `yaml:"actionable_tips"`
	WhenToUse         []string          `yaml:"when_to_use"`
	AvoidWhen         []string          `yaml:"avoid_when"`
}

type DirectorEntry struct {
	Name        string      `yaml:"name"`
	CoreTension string      `yaml:"core_tension"`
	Works       []WorkEntry `yaml:"works"`
}

type WorkCorpus struct {
	Directors []DirectorEntry `yaml:"directors"`
}

// LoadTheoryCorpus reads a theory corpus from path, or the embedded corpus
// when path is empty.
func LoadTheoryCorpus(path string) (*TheoryCorpus, error) {
	data := embeddedTheoryCorpus
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read theory corpus: %w", err)
		}
		data = b
	}
	var corpus TheoryCorpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("parse theory corpus: %w", err)
	}
	return &corpus, nil
}

// LoadWorkCorpus reads a work corpus from path, or the embedded corpus
// when path is empty.
func LoadWorkCorpus(path string) (*WorkCorpus, error) {
	data := embeddedWorkCorpus
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read work corpus: %w", err)
		}
		data = b
	}
	var corpus WorkCorpus
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return nil, fmt.Errorf("parse work corpus: %w", err)
	}
	return &corpus, nil
}
