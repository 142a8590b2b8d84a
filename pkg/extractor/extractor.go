// Package extractor turns free-form creative input into a short keyword
// list. Three backends share one contract: rule-based substring matching,
// Anthropic and OpenAI. The LLM backends fall back to the rule extractor on
// any failure, so extraction never errors out a turn.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/usage"
	"github.com/cineforge/muse/pkg/utils"
)

const maxKeywords = 5

// KeywordExtractor extracts at most five deduplicated keywords. It never
// returns an empty slice and never fails.
type KeywordExtractor interface {
	Extract(ctx context.Context, input string, contextKeywords []string) []string
}

// New builds the configured backend. The usage store may be nil, in which
// case calls go unrecorded.
func New(backend, apiKey, apiBase, model string, store *usage.Store) (KeywordExtractor, error) {
	switch backend {
	case "rule", "":
		return NewRuleExtractor(), nil
	case "anthropic":
		if apiKey == "" {
			return nil, &creative.ConfigurationError{
				Field:  "providers.anthropic.api_key",
				Reason: "anthropic extractor requires an API key",
			}
		}
		return NewAnthropicExtractor(apiKey, apiBase, model, store), nil
	case "openai":
		if apiKey == "" {
			return nil, &creative.ConfigurationError{
				Field:  "providers.openai.api_key",
				Reason: "openai extractor requires an API key",
			}
		}
		return NewOpenAIExtractor(apiKey, apiBase, model, store), nil
	default:
		return nil, &creative.ConfigurationError{
			Field:  "extractor.backend",
			Reason: fmt.Sprintf("unknown backend %q", backend),
		}
	}
}

// buildPrompt assembles the extraction prompt, folding in accumulated
// context keywords so refinements keep their thread.
func buildPrompt(input string, contextKeywords []string) string {
	contextPart := ""
	if len(contextKeywords) > 0 {
		contextPart = "\n上下文已有关键词：" + strings.Join(contextKeywords, ", ")
	}

	return fmt.Sprintf(`你是电影创作助手，从用户输入中提取电影创作相关的关键词。

用户输入：%s%s

请从以下维度提取关键词：
1. 主题：记忆、时间、孤独、爱情、死亡、童年、战争、家庭等
2. 情绪：忧郁、怀旧、恐惧、喜悦、悲伤、紧张等
3. 风格：现代、古典、未来、乡土、城市、自然等
4. 技法：长镜头、蒙太奇、固定镜头、跟拍、特写等
5. 视觉：色彩、光线、构图、景别等

只返回关键词，用逗号分隔，不要解释。如果用户在细化之前的想法，要保留上下文关键词。

示例：
用户："我在构思一个关于记忆消逝的场景" → 记忆,时间,消逝
用户："我想要更现代的感觉" (上下文:记忆) → 记忆,现代,城市,当代
用户："色彩上该怎么处理？" (上下文:记忆,现代) → 记忆,现代,色彩,配色
`, input, contextPart)
}

// parseKeywords splits an LLM reply into clean keywords: prefixes stripped,
// both comma variants accepted, deduplicated, capped.
func parseKeywords(response string) []string {
	response = strings.ReplaceAll(response, "关键词：", "")
	response = strings.ReplaceAll(response, "Keywords:", "")
	response = strings.ReplaceAll(response, "，", ",")

	var keywords []string
	for _, part := range strings.Split(response, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	keywords = utils.Dedupe(keywords)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}
