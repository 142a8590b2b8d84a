// Package scenes turns abstract creative tension into short, perceivable
// scene descriptions: something the creator can see and hear rather than a
// concept to reason about.
package scenes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/utils"
)

// Generator produces visual scenes for a turn. Implementations may return
// an empty slice with a nil error when generation is switched off.
type Generator interface {
	Generate(ctx context.Context, input string, keywords []string, stage creative.Stage, inspirations []creative.Inspiration) ([]creative.VisualScene, error)
}

// Disabled is the no-op generator used when scene generation is off.
type Disabled struct{}

func (Disabled) Generate(context.Context, string, []string, creative.Stage, []creative.Inspiration) ([]creative.VisualScene, error) {
	return nil, nil
}

// buildPrompt assembles the scene generation prompt, folding in the most
// relevant theory and work references as compressed context.
func buildPrompt(input string, keywords []string, stage creative.Stage, inspirations []creative.Inspiration) string {
	var theoryRefs, workRefs []string
	limit := len(inspirations)
	if limit > 3 {
		limit = 3
	}
	for _, insp := range inspirations[:limit] {
		ref := fmt.Sprintf("- %s: %s", insp.Title, utils.Truncate(insp.Content, 100))
		switch insp.Type {
		case "theory":
			theoryRefs = append(theoryRefs, ref)
		case "work":
			workRefs = append(workRefs, ref)
		}
	}
	theoryContext := "无"
	if len(theoryRefs) > 0 {
		theoryContext = strings.Join(theoryRefs, "\n")
	}
	workContext := "无"
	if len(workRefs) > 0 {
		workContext = strings.Join(workRefs, "\n")
	}

	return fmt.Sprintf(`你是一个电影创作的视觉化助手。你的任务是把用户的抽象想法转化为可以"看到""听到"的具体场景描述。

**核心原则**（来自认知共振理论）：
- 感知先行：直接描述视觉和听觉，不要解释概念
- 张力对应：场景要体现用户想法中的内在张力
- 简约性：单一焦点，避免复杂
- 时间性：明确持续时间（5-30秒）
- 未完成性：留下想象空间，不要给完整答案

**用户输入**：
%s

**识别的关键词**：
%s

**当前创作阶段**：
%s

**相关理论参考**：
%s

**相关作品参考**：
%s

**你的任务**：
生成2-3个视觉化场景描述，每个场景包含：

1. **标题**：3-5个字的简短标题
2. **画面**：详细的视觉描述（镜头、主体、背景、光线、运动）
3. **声音**：声音设计（环境音、音效、音乐）
4. **时长**：具体的持续时间（如"15秒""1分钟"）
5. **激发目的**：这个场景为什么能激发用户的创意（1句话）
6. **对应张力**：这个场景体现了什么张力（如"瞬间↔永恒""记忆↔遗忘"）

**重要**：
- 不要解释理论，而是用视觉元素体现理论
- 不要生成完整剧本，而是生成单个可感知的"片段"
- 每个场景都应该是独立的、具体的、可以直接想象的

**输出格式**（严格按此格式）：

---场景1---
标题：[3-5字]
画面：[详细描述]
声音：[声音设计]
时长：[具体时间]
激发目的：[1句话]
对应张力：[张力描述]

---场景2---
...

请生成2-3个场景。
`, input, strings.Join(keywords, ", "), stage, theoryContext, workContext)
}

// ParseScenes splits a model reply into scenes. Blocks missing any of the
// six fields are dropped rather than returned half-filled.
func ParseScenes(response string) []creative.VisualScene {
	var scenes []creative.VisualScene

	blocks := strings.Split(response, "---场景")
	// The text before the first delimiter is never a scene.
	for _, block := range blocks[1:] {
		var scene creative.VisualScene
		var haveTitle, haveVisual, haveSound, haveDuration, havePurpose, haveTension bool

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "标题："):
				scene.Title = strings.TrimSpace(strings.TrimPrefix(line, "标题："))
				haveTitle = scene.Title != ""
			case strings.HasPrefix(line, "画面："):
				scene.Visual = strings.TrimSpace(strings.TrimPrefix(line, "画面："))
				haveVisual = scene.Visual != ""
			case strings.HasPrefix(line, "声音："):
				scene.Sound = strings.TrimSpace(strings.TrimPrefix(line, "声音："))
				haveSound = scene.Sound != ""
			case strings.HasPrefix(line, "时长："):
				scene.Duration = strings.TrimSpace(strings.TrimPrefix(line, "时长："))
				haveDuration = scene.Duration != ""
			case strings.HasPrefix(line, "激发目的："):
				scene.Purpose = strings.TrimSpace(strings.TrimPrefix(line, "激发目的："))
				havePurpose = scene.Purpose != ""
			case strings.HasPrefix(line, "对应张力："):
				scene.Tension = strings.TrimSpace(strings.TrimPrefix(line, "对应张力："))
				haveTension = scene.Tension != ""
			}
		}

		if haveTitle && haveVisual && haveSound && haveDuration && havePurpose && haveTension {
			scenes = append(scenes, scene)
		}
	}
	return scenes
}
