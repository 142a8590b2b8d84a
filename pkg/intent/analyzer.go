// Package intent classifies a dialogue input as a refinement of the
// current direction or a fresh topic, and extracts what the refinement
// adds, removes or shifts.
package intent

import "strings"

// RefinementIntent is the analysis result for one input.
type RefinementIntent struct {
	IsRefinement     bool     `json:"is_refinement"`
	NewKeywords      []string `json:"new_keywords"`
	ExcludedKeywords []string `json:"excluded_keywords"`
	DimensionShift   string   `json:"dimension_shift,omitempty"`
	RefinementType   string   `json:"refinement_type,omitempty"`
}

// Analyzer classifies one input against the accumulated context keywords.
type Analyzer interface {
	AnalyzeRefinement(input string, contextKeywords []string) RefinementIntent
}

// Refinement cue vocabularies. Type detection checks add cues first, then
// exclude, then replace.
var refinementPatterns = []struct {
	kind string
	cues []string
}{
	{"add", []string{"更", "还要", "加上", "另外", "同时"}},
	{"exclude", []string{"不要", "不是", "去掉", "排除", "换掉"}},
	{"replace", []string{"改成", "换成", "变成", "而是"}},
}

// Creative dimension vocabularies. The first dimension whose cue appears
// in the input wins.
var dimensionKeywords = []struct {
	name string
	cues []string
}{
	{"色彩", []string{"色彩", "颜色", "色调", "配色", "冷暖"}},
	{"构图", []string{"构图", "画面", "取景", "角度", "景别"}},
	{"光线", []string{"光线", "光影", "明暗", "照明", "自然光"}},
	{"时间", []string{"时间", "时长", "剪辑"}},
	{"节奏", []string{"节奏", "速度", "快慢"}},
	{"声音", []string{"声音", "音效", "配乐", "音乐", "氛围"}},
}

// keywordCandidates is the closed vocabulary the rule analyzer recognizes:
// themes, moods, styles and camera techniques.
var keywordCandidates = []string{
	"记忆", "时间", "孤独", "爱情", "死亡", "童年", "战争", "家庭",
	"忧郁", "怀旧", "恐惧", "喜悦", "悲伤",
	"现代", "古典", "未来", "乡土", "城市", "自然",
	"长镜头", "蒙太奇", "固定镜头", "跟拍",
}

// RuleAnalyzer is the substring-matching implementation. It needs no
// external services and is the default backend.
type RuleAnalyzer struct{}

func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{}
}

func (a *RuleAnalyzer) AnalyzeRefinement(input string, contextKeywords []string) RefinementIntent {
	return RefinementIntent{
		IsRefinement:     isRefinement(input),
		NewKeywords:      extractKeywords(input),
		ExcludedKeywords: extractExcluded(input, contextKeywords),
		DimensionShift:   detectDimension(input),
		RefinementType:   detectType(input),
	}
}

func isRefinement(input string) bool {
	for _, p := range refinementPatterns {
		for _, cue := range p.cues {
			if strings.Contains(input, cue) {
				return true
			}
		}
	}
	for _, d := range dimensionKeywords {
		for _, cue := range d.cues {
			if strings.Contains(input, cue) {
				return true
			}
		}
	}
	return false
}

func extractKeywords(input string) []string {
	var found []string
	for _, kw := range keywordCandidates {
		if strings.Contains(input, kw) {
			found = append(found, kw)
		}
	}
	return found
}

// extractExcluded marks a context keyword excluded when an exclusion cue
// and the keyword itself both appear in the input, as in "不要城市".
func extractExcluded(input string, contextKeywords []string) []string {
	hasExcludeCue := false
	for _, p := range refinementPatterns {
		if p.kind != "exclude" {
			continue
		}
		for _, cue := range p.cues {
			if strings.Contains(input, cue) {
				hasExcludeCue = true
				break
			}
		}
	}
	if !hasExcludeCue {
		return nil
	}

	var excluded []string
	for _, kw := range contextKeywords {
		if strings.Contains(input, kw) {
			excluded = append(excluded, kw)
		}
	}
	return excluded
}

func detectDimension(input string) string {
	for _, d := range dimensionKeywords {
		for _, cue := range d.cues {
			if strings.Contains(input, cue) {
				return d.name
			}
		}
	}
	return ""
}

func detectType(input string) string {
	for _, p := range refinementPatterns {
		for _, cue := range p.cues {
			if strings.Contains(input, cue) {
				return p.kind
			}
		}
	}
	return ""
}
