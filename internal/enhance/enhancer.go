// Package enhance generates marketing copy and SEO fields for a merged
// business record with a language model.
package enhance

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
)

// Generator sends one prompt to a model and returns its raw text reply.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Enhancer turns business facts into SEO copy.
type Enhancer interface {
	Enhance(ctx context.Context, in Input) (*model.SEOCopy, error)
}

// Input is the slice of a merged result the prompt is built from.
type Input struct {
	Name            string
	City            string
	Region          string
	Description     string
	Services        []string
	Amenities       []string
	Categories      []string
	Hours           *model.Hours
	PriceTier       string
	Reviews         []model.ReviewSummary
	AggregateRating *float64
	ReviewCount     int
}

// InputFromResult copies the prompt-relevant fields out of r.
func InputFromResult(r *model.MergedEnrichmentResult) Input {
	in := Input{
		Name:            model.Deref(r.Name),
		City:            model.Deref(r.City),
		Region:          model.Deref(r.State),
		Description:     model.Deref(r.Description),
		Services:        r.Services,
		Amenities:       r.Amenities,
		Categories:      r.SuggestedCategories,
		Hours:           r.Hours,
		Reviews:         r.Reviews,
		AggregateRating: r.AggregateRating,
		ReviewCount:     r.AggregateReviewCount,
	}
	if r.PriceTier != nil {
		in.PriceTier = r.PriceTier.String()
	}
	return in
}

// LLM is the Enhancer backed by a Generator.
type LLM struct {
	gen     Generator
	timeout time.Duration
}

// New returns an Enhancer that prompts gen. A zero timeout leaves the
// caller's deadline in charge.
func New(gen Generator, timeout time.Duration) *LLM {
	return &LLM{gen: gen, timeout: timeout}
}

// Enhance implements Enhancer.
func (e *LLM) Enhance(ctx context.Context, in Input) (*model.SEOCopy, error) {
	if in.Name == "" {
		return nil, eris.New("enhance: business name is required")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	text, err := e.gen.Generate(ctx, BuildPrompt(in))
	if err != nil {
		return nil, eris.Wrap(err, "enhance: generate")
	}
	seo, err := ParseResponse(text)
	if err != nil {
		return nil, eris.Wrap(err, "enhance: parse")
	}
	return seo, nil
}
