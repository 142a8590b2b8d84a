// Package guiding detects which of the five dialogue stages a creator is
// in and produces the guiding questions that move the conversation forward.
package guiding

import (
	"strings"

	"github.com/cineforge/muse/pkg/creative"
)

// Cue vocabularies for stage detection. Matching is plain substring search,
// which is intentionally naive: the cues are short and unambiguous in
// practice, and false positives only nudge the stage, never break the turn.
var (
	scenarioMarkers = []string{
		"场景", "镜头", "画面", "地点", "房间", "街道",
		"人物", "角色", "主角", "配角",
		"开头", "结尾", "中间", "第一个", "最后",
		"分钟", "秒", "时长",
	}
	questionMarkers  = []string{"?", "？", "吗", "呢", "如何", "怎样"}
	decisionMarkers  = []string{"就", "确定", "选", "决定", "要这个"}
	executionMarkers = []string{"怎么拍", "脚本", "执行", "具体步骤"}
)

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func hasConcreteScenario(text string) bool {
	return containsAny(text, scenarioMarkers)
}

// DetectStage classifies the input into one of the five stages. Rules fire
// in order and the first match wins.
func DetectStage(input string, turn int, contextKeywords []string) creative.Stage {
	// First turn starts at clarify unless the user opens with concrete
	// scene detail.
	if turn == 1 {
		if hasConcreteScenario(input) {
			return creative.StageFocus
		}
		return creative.StageClarify
	}

	// Asking questions with established context signals exploration.
	if containsAny(input, questionMarkers) && len(contextKeywords) > 0 {
		return creative.StageDiverge
	}

	// Concrete scene detail: early on it narrows, later it commits.
	if hasConcreteScenario(input) {
		if turn <= 3 {
			return creative.StageFocus
		}
		return creative.StageConverge
	}

	if containsAny(input, decisionMarkers) {
		return creative.StageConverge
	}

	if containsAny(input, executionMarkers) {
		return creative.StageOrganize
	}

	// Fall back on turn count.
	switch {
	case turn <= 2:
		return creative.StageClarify
	case turn <= 4:
		return creative.StageFocus
	case turn <= 6:
		return creative.StageDiverge
	default:
		return creative.StageConverge
	}
}
