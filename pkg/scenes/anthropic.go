package scenes

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/logger"
	"github.com/cineforge/muse/pkg/usage"
)

const defaultModel = "claude-3-5-haiku-20241022"

// AnthropicGenerator produces scenes with a haiku-class model. Temperature
// runs warmer than extraction because the output is creative.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
	store  *usage.Store
}

func NewAnthropicGenerator(apiKey, apiBase, model string, store *usage.Store) *AnthropicGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if apiBase != "" {
		opts = append(opts, option.WithBaseURL(apiBase))
	}
	if model == "" {
		model = defaultModel
	}
	return &AnthropicGenerator{
		client: anthropic.NewClient(opts...),
		model:  model,
		store:  store,
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, input string, keywords []string, stage creative.Stage, inspirations []creative.Inspiration) ([]creative.VisualScene, error) {
	prompt := buildPrompt(input, keywords, stage, inspirations)

	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   2000,
		Temperature: anthropic.Float(0.8),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, &creative.CollaboratorError{Collaborator: "scene_generator", Err: err}
	}

	if g.store != nil {
		g.store.Add(usage.Record{
			Provider:     "anthropic",
			Model:        g.model,
			Purpose:      "scene_generation",
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
			UsageKnown:   true,
		})
		logger.DebugCF("scenes", "Generation usage", map[string]any{
			"input_tokens":  usage.HumanTokens(int(msg.Usage.InputTokens)),
			"output_tokens": usage.HumanTokens(int(msg.Usage.OutputTokens)),
		})
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return ParseScenes(text.String()), nil
}
