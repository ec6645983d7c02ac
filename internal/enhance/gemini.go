package enhance

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

var copySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"description":     {Type: genai.TypeString},
		"seo_title":       {Type: genai.TypeString},
		"seo_description": {Type: genai.TypeString},
		"keywords":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"schema_type":     {Type: genai.TypeString, Enum: SchemaTypes},
	},
	Required: []string{"description", "seo_title", "seo_description", "keywords", "schema_type"},
}

// GeminiConfig configures the Gemini generator.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiGenerator generates copy with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a Generator backed by Gemini.
func NewGeminiGenerator(ctx context.Context, cfg GeminiConfig) (*GeminiGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("enhance: gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "enhance: gemini client")
	}
	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		CandidateCount:   1,
		ResponseMIMEType: "application/json",
		ResponseSchema:   copySchema,
	})
	if err != nil {
		return "", eris.Wrap(err, "enhance: gemini")
	}
	return resp.Text(), nil
}
