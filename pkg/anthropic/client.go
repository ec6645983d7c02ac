// Package anthropic wraps the Anthropic Messages API behind a narrow
// interface so callers can swap in a mock.
package anthropic

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Client sends a single message exchange.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
}

// MessageRequest is a single-turn request.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      string
	Messages    []Message
	Temperature *float64
}

// Message is one conversational turn. Role is "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// MessageResponse holds the parts of a reply callers use.
type MessageResponse struct {
	ID         string
	Model      string
	Content    []ContentBlock
	StopReason string
	Usage      TokenUsage
}

// ContentBlock is one block of a reply.
type ContentBlock struct {
	Type string
	Text string
}

// Text joins the text blocks of the reply.
func (r *MessageResponse) Text() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range r.Content {
		if c.Type == "text" {
			b.WriteString(c.Text)
		}
	}
	return b.String()
}

// Truncated reports whether generation stopped at the token limit.
func (r *MessageResponse) Truncated() bool {
	return r != nil && r.StopReason == string(sdk.StopReasonMaxTokens)
}

// TokenUsage counts tokens billed for a request.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// Per-million-token prices in USD: {input, output}.
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {1.00, 5.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost returns the USD cost of u for model, or 0 when the model has
// no known price.
func (u TokenUsage) EstimateCost(model string) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return float64(u.InputTokens)/1e6*p[0] + float64(u.OutputTokens)/1e6*p[1]
}

// LogCost records token usage for one call.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Debug("anthropic usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

type sdkClient struct {
	client sdk.Client
}

// NewClient returns a Client backed by anthropic-sdk-go. opts are passed to
// the SDK after the API key, so tests can point it at a local server.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &sdkClient{client: sdk.NewClient(opts...)}
}

func (c *sdkClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  toParams(req.Messages),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: create message")
	}
	return fromMessage(msg), nil
}

func toParams(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			out[i] = sdk.NewAssistantMessage(block)
		} else {
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func fromMessage(msg *sdk.Message) *MessageResponse {
	resp := &MessageResponse{
		ID:         msg.ID,
		Model:      string(msg.Model),
		StopReason: string(msg.StopReason),
		Usage: TokenUsage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}
	for _, b := range msg.Content {
		resp.Content = append(resp.Content, ContentBlock{Type: b.Type, Text: b.Text})
	}
	return resp
}
