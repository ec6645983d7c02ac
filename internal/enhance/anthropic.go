package enhance

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-enrich/pkg/anthropic"
)

const systemPrompt = "You are a careful copywriter for a local business directory. You reply with JSON only."

// AnthropicGenerator generates copy with the Anthropic Messages API.
type AnthropicGenerator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicGenerator creates a Generator for model.
func NewAnthropicGenerator(client anthropic.Client, model string, maxTokens int64) *AnthropicGenerator {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &AnthropicGenerator{client: client, model: model, maxTokens: maxTokens}
}

// Generate implements Generator.
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", eris.Wrap(err, "enhance: anthropic")
	}
	resp.Usage.LogCost(g.model, "enhance")
	if resp.Truncated() {
		zap.L().Warn("enhance: reply hit max_tokens", zap.Int64("max_tokens", g.maxTokens))
	}
	return resp.Text(), nil
}
