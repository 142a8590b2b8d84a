// Package controller decides what content each dialogue turn returns. It
// releases content progressively rather than all at once, adapts to the
// detected stage and reacts to the user's mood.
package controller

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cineforge/muse/pkg/creative"
)

// Sentiment classifies the emotional tone of an input.
type Sentiment string

const (
	SentimentSatisfied  Sentiment = "satisfied"
	SentimentConfused   Sentiment = "confused"
	SentimentFrustrated Sentiment = "frustrated"
	SentimentCurious    Sentiment = "curious"
	SentimentNeutral    Sentiment = "neutral"
)

var (
	frustratedCues = []string{
		"为什么", "没有结果", "不对", "不行", "错了",
		"不是这样", "不满意", "没用", "怎么回事",
		"一直", "始终", "总是", "还是",
	}
	confusedCues = []string{
		"什么意思", "不懂", "不明白", "怎么", "如何",
		"能解释", "是什么", "看不懂", "不理解",
	}
	satisfiedCues = []string{
		"好的", "很好", "不错", "对", "是的", "继续",
		"有意思", "喜欢", "想看", "想要", "可以",
	}
)

// DetectSentiment classifies an input. Frustration outranks confusion,
// which outranks satisfaction; long or questioning inputs read as curious.
func DetectSentiment(input string) Sentiment {
	for _, cue := range frustratedCues {
		if strings.Contains(input, cue) {
			return SentimentFrustrated
		}
	}
	for _, cue := range confusedCues {
		if strings.Contains(input, cue) {
			return SentimentConfused
		}
	}
	for _, cue := range satisfiedCues {
		if strings.Contains(input, cue) {
			return SentimentSatisfied
		}
	}
	if strings.Contains(input, "?") || strings.Contains(input, "？") || utf8.RuneCountInString(input) > 20 {
		return SentimentCurious
	}
	return SentimentNeutral
}

// ContentPlan says what a turn's response should contain. A ScenesLimit of
// zero with ReturnScenes set means every available scene.
type ContentPlan struct {
	ReturnKeywords bool `json:"return_keywords"`
	ReturnTheory   bool `json:"return_theory"`
	ReturnWorks    bool `json:"return_works"`
	ReturnScenes   bool `json:"return_scenes"`
	ReturnQuestion bool `json:"return_question"`

	TheoryLimit int `json:"theory_limit"`
	WorksLimit  int `json:"works_limit"`
	ScenesLimit int `json:"scenes_limit"`
	SceneIndex  int `json:"scene_index"`

	ExplainProcess bool `json:"explain_process"`
	AdjustStrategy bool `json:"adjust_strategy"`

	Sentiment Sentiment `json:"sentiment"`
	Rationale string    `json:"rationale"`
}

// Controller plans content release turn by turn.
type Controller struct{}

func New() *Controller {
	return &Controller{}
}

// Plan decides the content for one turn. Guiding questions are always
// included; everything else depends on sentiment, turn number and stage.
func (c *Controller) Plan(turn int, stage creative.Stage, input string) ContentPlan {
	sentiment := DetectSentiment(input)

	// A frustrated user has waited long enough for something concrete:
	// skip ahead to scenes and references.
	if sentiment == SentimentFrustrated {
		return ContentPlan{
			ReturnQuestion: true,
			ReturnScenes:   true,
			ScenesLimit:    2,
			ReturnWorks:    true,
			WorksLimit:     2,
			ExplainProcess: true,
			AdjustStrategy: true,
			Sentiment:      sentiment,
			Rationale:      fmt.Sprintf("turn %d: frustration detected, switching to concrete output", turn),
		}
	}

	if sentiment == SentimentConfused {
		return ContentPlan{
			ReturnQuestion: true,
			ExplainProcess: true,
			Sentiment:      sentiment,
			Rationale:      fmt.Sprintf("turn %d: confusion detected, explaining the process", turn),
		}
	}

	plan := ContentPlan{
		ReturnQuestion: true,
		Sentiment:      sentiment,
		Rationale:      fmt.Sprintf("turn %d, stage %s, sentiment %s", turn, stage, sentiment),
	}
	early := stage == creative.StageClarify || stage == creative.StageFocus

	switch {
	case turn == 1:
		plan.ReturnKeywords = true

	case turn == 2:
		if early {
			plan.ReturnTheory = true
			plan.TheoryLimit = 2
		} else {
			plan.ReturnWorks = true
			plan.WorksLimit = 2
		}

	case turn == 3:
		if early {
			plan.ReturnWorks = true
			plan.WorksLimit = 2
		} else {
			plan.ReturnScenes = true
			plan.ScenesLimit = 1
			plan.SceneIndex = 0
		}

	default: // turn >= 4
		switch stage {
		case creative.StageDiverge, creative.StageConverge:
			plan.ReturnScenes = true
			plan.ScenesLimit = 1
			plan.SceneIndex = turn - 4
		case creative.StageOrganize:
			plan.ReturnScenes = true
			plan.ScenesLimit = 0 // all of them
		default:
			if turn%2 == 0 {
				plan.ReturnTheory = true
				plan.TheoryLimit = 1
			} else {
				plan.ReturnWorks = true
				plan.WorksLimit = 2
			}
		}
	}
	return plan
}

// ShouldExplainProgress reports whether this turn gets a proactive note
// about where the conversation stands.
func (c *Controller) ShouldExplainProgress(turn int) bool {
	switch turn {
	case 1, 4, 7, 10:
		return true
	}
	return false
}

var stageDescriptions = map[creative.Stage]string{
	creative.StageClarify:  "明确创作意图，提取核心关键词",
	creative.StageFocus:    "聚焦理论框架，建立概念基础",
	creative.StageDiverge:  "发散作品参考，拓宽创作视野",
	creative.StageConverge: "收束到具体场景，逐步构建视觉",
	creative.StageOrganize: "整理创作成果，形成完整方案",
}

// ProgressMessage returns the proactive note for a milestone turn, empty
// for all other turns.
func (c *Controller) ProgressMessage(turn int, stage creative.Stage) string {
	desc := stageDescriptions[stage]
	switch turn {
	case 1:
		return fmt.Sprintf("我们开始创作之旅！现在是'%s'阶段，我会先帮你提炼核心关键词。", stage)
	case 4:
		return fmt.Sprintf("很好！我们已经进入'%s'阶段。%s。让我们一步步深入。", stage, desc)
	case 7:
		return fmt.Sprintf("进展顺利！当前是'%s'阶段，%s。继续保持这个节奏。", stage, desc)
	case 10:
		return fmt.Sprintf("我们快要完成了！'%s'阶段即将收尾。", stage)
	}
	return ""
}
