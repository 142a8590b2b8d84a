package extractor

import (
	"context"
	"strings"
)

// ruleVocabulary is the closed keyword list the rule backend recognizes:
// themes, moods, styles, camera techniques and visual dimensions.
var ruleVocabulary = []string{
	"记忆", "时间", "孤独", "爱情", "死亡", "童年", "战争", "家庭",
	"忧郁", "怀旧", "恐惧", "喜悦", "悲伤",
	"现代", "古典", "未来", "乡土", "城市", "自然",
	"长镜头", "蒙太奇", "固定镜头", "跟拍",
	"色彩", "光线", "构图", "景别",
}

// defaultKeyword keeps extraction non-empty when nothing matches.
const defaultKeyword = "记忆"

// RuleExtractor matches input against a fixed vocabulary. It is the
// default backend and the fallback for the LLM backends.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

func (e *RuleExtractor) Extract(_ context.Context, input string, _ []string) []string {
	var found []string
	for _, kw := range ruleVocabulary {
		if strings.Contains(input, kw) {
			found = append(found, kw)
		}
	}
	if len(found) == 0 {
		return []string{defaultKeyword}
	}
	if len(found) > maxKeywords {
		found = found[:maxKeywords]
	}
	return found
}
