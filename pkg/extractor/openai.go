package extractor

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/usage"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIExtractor is the chat-completions backend for deployments without
// Anthropic access.
type OpenAIExtractor struct {
	opts     []option.RequestOption
	model    string
	store    *usage.Store
	fallback *RuleExtractor
}

func NewOpenAIExtractor(apiKey, apiBase, model string, store *usage.Store) *OpenAIExtractor {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIExtractor{
		opts:     opts,
		model:    model,
		store:    store,
		fallback: NewRuleExtractor(),
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, input string, contextKeywords []string) []string {
	client := openai.NewClient(e.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("你是电影创作助手，只返回逗号分隔的关键词。"),
			openai.UserMessage(buildPrompt(input, contextKeywords)),
		},
	})
	if err != nil {
		logger.WarnCF("extractor", "OpenAI call failed, using rule fallback",
			map[string]any{"error": err.Error()})
		return e.fallback.Extract(ctx, input, contextKeywords)
	}
	if len(resp.Choices) == 0 {
		logger.WarnC("extractor", "OpenAI returned no choices, using rule fallback")
		return e.fallback.Extract(ctx, input, contextKeywords)
	}

	if e.store != nil {
		e.store.Add(usage.Record{
			Provider:     "openai",
			Model:        e.model,
			Purpose:      "keyword_extraction",
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			UsageKnown:   true,
		})
	}

	keywords := parseKeywords(strings.TrimSpace(resp.Choices[0].Message.Content))
	if len(keywords) == 0 {
		return e.fallback.Extract(ctx, input, contextKeywords)
	}
	return keywords
}
