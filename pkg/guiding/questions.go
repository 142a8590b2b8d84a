package guiding

import (
	"sort"

	"github.com/cineforge/muse/pkg/creative"
)

const maxQuestions = 3

type questionGroup struct {
	questions []string
	purpose   string
}

// Clarify questions form a ladder: concrete experience first, then emotion,
// value and finally the philosophical core. One rung per turn.
var clarifyLayers = []questionGroup{
	{
		questions: []string{
			"最近什么让你印象深刻？",
			"能描述一个具体的时刻吗？",
			"什么触动了你想要创作的念头？",
		},
		purpose: "引导用户回忆具体经验",
	},
	{
		questions: []string{
			"那个时刻的感觉是什么？",
			"这种感觉是愉悦的、痛苦的，还是复杂的？",
			"这种情绪有多强烈？",
		},
		purpose: "识别情感基调",
	},
	{
		questions: []string{
			"为什么这个时刻对你重要？",
			"你希望通过电影传达什么？",
			"你想让观众感受到什么？",
		},
		purpose: "提取价值判断",
	},
	{
		questions: []string{
			"这触及了什么根本性的问题？",
			"这与你对世界/人性的理解有什么关系？",
			"如果用一个词概括这种张力，会是什么？",
		},
		purpose: "揭示哲学内核",
	},
}

var focusGroups = []questionGroup{
	{
		questions: []string{
			"如果只能拍一个场景来体现这个想法，会是什么？",
			"这个场景发生在什么空间？室内还是室外？",
			"这个场景的持续时间是多久？",
		},
		purpose: "将抽象内核锚定到具体场景",
	},
	{
		questions: []string{
			"画面里有几个人物？",
			"他们在做什么？",
			"他们之间是什么关系？",
		},
		purpose: "明确人物和行动",
	},
	{
		questions: []string{
			"用什么样的镜头？固定还是运动？",
			"焦点在哪里？前景还是背景？",
			"光线是什么感觉？",
		},
		purpose: "初步视觉策略",
	},
}

var divergeGroups = []questionGroup{
	{
		questions: []string{
			"如果时长压缩到30秒会怎样？",
			"如果扩展到10分钟会怎样？",
			"如果用慢动作会怎样？",
		},
		purpose: "探索时间维度的变体",
	},
	{
		questions: []string{
			"如果从天花板俯拍会怎样？",
			"如果贴近某个人的视角会怎样？",
			"如果用第一人称主观镜头会怎样？",
		},
		purpose: "探索视点的可能性",
	},
	{
		questions: []string{
			"如果完全没有声音会怎样？",
			"如果放大某个细微声音会怎样？",
			"如果加入音乐会怎样？什么风格的？",
		},
		purpose: "探索声音设计",
	},
	{
		questions: []string{
			"如果拍清晨会怎样？",
			"如果拍深夜会怎样？",
			"如果拍季节转换会怎样？",
		},
		purpose: "探索时刻选择",
	},
}

var convergeGroups = []questionGroup{
	{
		questions: []string{
			"这个方案最打动你的是什么？",
			"它和你最初的想法契合吗？",
			"还有什么让你不确定的地方？",
		},
		purpose: "评估方案与内核的契合度",
	},
	{
		questions: []string{
			"能再具体描述一下XX吗？",
			"这段时间里，画面有哪些变化？",
			"开头和结尾分别是什么？",
		},
		purpose: "填充细节",
	},
	{
		questions: []string{
			"XX和YY会不会产生矛盾？",
			"这个选择是有意为之，还是需要调整？",
			"如果删掉XX，会失去什么？",
		},
		purpose: "检验一致性",
	},
}

var organizeGroups = []questionGroup{
	{
		questions: []string{
			"需要我生成分镜头脚本吗？",
			"需要补充哪些技术规格？",
			"这个场景还有其他部分需要设计吗？",
		},
		purpose: "准备可执行文档",
	},
	{
		questions: []string{
			"如果还有其他场景，要继续探讨吗？",
			"想深化这个场景的某个细节吗？",
			"还是已经可以进入拍摄了？",
		},
		purpose: "确认下一步行动",
	},
}

// Generator produces at most three guiding questions for a stage, ordered
// by descending priority.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(stage creative.Stage, turn int) []creative.GuidingQuestion {
	var questions []creative.GuidingQuestion

	switch stage {
	case creative.StageClarify:
		questions = clarifyQuestions(turn)
	case creative.StageFocus:
		questions = []creative.GuidingQuestion{
			pick(focusGroups[0], creative.StageFocus, 1.0),
			pick(focusGroups[1], creative.StageFocus, 0.8),
		}
	case creative.StageDiverge:
		questions = []creative.GuidingQuestion{
			pick(divergeGroups[0], creative.StageDiverge, 0.8),
			pick(divergeGroups[1], creative.StageDiverge, 0.8),
		}
	case creative.StageConverge:
		questions = []creative.GuidingQuestion{
			pick(convergeGroups[0], creative.StageConverge, 1.0),
		}
	case creative.StageOrganize:
		questions = []creative.GuidingQuestion{
			pick(organizeGroups[0], creative.StageOrganize, 1.0),
		}
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Priority > questions[j].Priority
	})
	if len(questions) > maxQuestions {
		questions = questions[:maxQuestions]
	}
	return questions
}

// clarifyQuestions climbs one ladder rung per turn and stays on the
// philosophy rung from turn four onwards.
func clarifyQuestions(turn int) []creative.GuidingQuestion {
	switch {
	case turn <= 1:
		return []creative.GuidingQuestion{pick(clarifyLayers[0], creative.StageClarify, 1.0)}
	case turn == 2:
		return []creative.GuidingQuestion{pick(clarifyLayers[1], creative.StageClarify, 0.9)}
	case turn == 3:
		return []creative.GuidingQuestion{pick(clarifyLayers[2], creative.StageClarify, 0.8)}
	default:
		return []creative.GuidingQuestion{pick(clarifyLayers[3], creative.StageClarify, 0.7)}
	}
}

func pick(g questionGroup, stage creative.Stage, priority float64) creative.GuidingQuestion {
	return creative.GuidingQuestion{
		Question: g.questions[0],
		Purpose:  g.purpose,
		Stage:    stage,
		Priority: priority,
	}
}
