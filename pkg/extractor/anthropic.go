package extractor

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/usage"
)

const defaultAnthropicModel = "claude-3-haiku-20240307"

// AnthropicExtractor asks a haiku-class model for keywords. Low
// temperature and a tight token cap keep replies short and stable.
type AnthropicExtractor struct {
	client   anthropic.Client
	model    string
	store    *usage.Store
	fallback *RuleExtractor
}

func NewAnthropicExtractor(apiKey, apiBase, model string, store *usage.Store) *AnthropicExtractor {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicExtractor{
		client:   anthropic.NewClient(opts...),
		model:    model,
		store:    store,
		fallback: NewRuleExtractor(),
	}
}

func (e *AnthropicExtractor) Extract(ctx context.Context, input string, contextKeywords []string) []string {
	prompt := buildPrompt(input, contextKeywords)

	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(e.model),
		MaxTokens:   200,
		Temperature: anthropic.Float(0.3),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		logger.WarnCF("extractor", "Anthropic call failed, using rule fallback",
			map[string]any{"error": err.Error()})
		return e.fallback.Extract(ctx, input, contextKeywords)
	}

	if e.store != nil {
		e.store.Add(usage.Record{
			Provider:     "anthropic",
			Model:        e.model,
			Purpose:      "keyword_extraction",
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			UsageKnown:   true,
		})
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	keywords := parseKeywords(strings.TrimSpace(text.String()))
	if len(keywords) == 0 {
		return e.fallback.Extract(ctx, input, contextKeywords)
	}
	return keywords
}
