// Package creative defines the shared vocabulary of the ideation engine:
// the five-stage creative flow, the creator state snapshot, and the content
// item types exchanged between the core and its collaborators.
package creative

import "fmt"

// Stage is one of the five creative phases. The phases are ordered but
// re-enterable: a dialogue can loop back to any earlier phase.
type Stage string

const (
	StageClarify  Stage = "明确" // clarify the theme and concept
	StageFocus    Stage = "聚焦" // anchor the core direction
	StageDiverge  Stage = "发散" // explore possibilities
	StageConverge Stage = "收束" // commit to a choice
	StageOrganize Stage = "整理" // structure the outcome
)

// stageNames maps external identifiers to stages. Both the english slug and
// the Chinese display value are accepted.
var stageNames = map[string]Stage{
	"clarify":  StageClarify,
	"focus":    StageFocus,
	"diverge":  StageDiverge,
	"converge": StageConverge,
	"organize": StageOrganize,
	"明确":       StageClarify,
	"聚焦":       StageFocus,
	"发散":       StageDiverge,
	"收束":       StageConverge,
	"整理":       StageOrganize,
}

// ParseStage resolves an external stage string. Unrecognized values are a
// client input error, reported via ErrInvalidStage.
func ParseStage(s string) (Stage, error) {
	if st, ok := stageNames[s]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, s)
}

func (s Stage) String() string { return string(s) }

// Slug returns the english identifier used in logs and API payloads.
func (s Stage) Slug() string {
	switch s {
	case StageClarify:
		return "clarify"
	case StageFocus:
		return "focus"
	case StageDiverge:
		return "diverge"
	case StageConverge:
		return "converge"
	case StageOrganize:
		return "organize"
	}
	return "unknown"
}

// Progress estimates how far along the creative flow this stage sits.
func (s Stage) Progress() float64 {
	switch s {
	case StageClarify:
		return 0.2
	case StageFocus:
		return 0.4
	case StageDiverge:
		return 0.5
	case StageConverge:
		return 0.7
	case StageOrganize:
		return 0.9
	}
	return 0.5
}

// CreatorState is the per-turn derived snapshot of the creator's position in
// the flow. It is not persisted; material changes are broadcast on the bus.
type CreatorState struct {
	Stage              Stage    `json:"stage"`
	Keywords           []string `json:"keywords"`
	StructureDimension string   `json:"structure_dimension"`
	Progress           float64  `json:"progress"`
	Context            string   `json:"context"`
}

// Inspiration is a ranked candidate content item (theory reference or work
// exemplar) returned by a content provider.
type Inspiration struct {
	Type           string         `json:"type"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	RelevanceScore float64        `json:"relevance_score"`
	Source         string         `json:"source"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// GuidingQuestion is one system-generated question nudging the creator
// deeper into the current stage.
type GuidingQuestion struct {
	Question string  `json:"question"`
	Purpose  string  `json:"purpose"`
	Stage    Stage   `json:"stage"`
	Priority float64 `json:"priority"`
}

// VisualScene is a generated perceivable scene description: something the
// creator can "see" and "hear" rather than a theory explanation.
type VisualScene struct {
	Title    string `json:"title"`
	Visual   string `json:"visual"`
	Sound    string `json:"sound"`
	Duration string `json:"duration"`
	Purpose  string `json:"purpose"`
	Tension  string `json:"tension"`
}
