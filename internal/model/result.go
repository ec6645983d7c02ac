package model

import (
	"strings"
	"time"
)

// PriceTier is an ordinal price bucket, 1 ($) through 4 ($$$$).
type PriceTier int

const (
	PriceBudget PriceTier = iota + 1
	PriceModerate
	PriceUpscale
	PriceLuxury
)

// ParsePriceTier converts "$".."$$$$" (or the local currency equivalent of
// repeated symbols) into a tier.
func ParsePriceTier(s string) (PriceTier, bool) {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	if n < 1 || n > 4 {
		return 0, false
	}
	first := []rune(s)[0]
	for _, r := range s {
		if r != first {
			return 0, false
		}
	}
	return PriceTier(n), true
}

func (p PriceTier) String() string {
	if p < PriceBudget || p > PriceLuxury {
		return ""
	}
	return strings.Repeat("$", int(p))
}

// ReviewSummary is one source's rating, preserved as reported.
type ReviewSummary struct {
	Source      string  `json:"source"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	URL         string  `json:"url,omitempty"`
}

// SEOCopy holds the generated marketing fields.
type SEOCopy struct {
	Description     string   `json:"description,omitempty"`
	Title           string   `json:"seoTitle,omitempty"`
	MetaDescription string   `json:"seoDescription,omitempty"`
	Keywords        []string `json:"seoKeywords,omitempty"`
	SchemaType      string   `json:"schemaType,omitempty"`
}

// MergedEnrichmentResult is the reconciled output of one pipeline run.
type MergedEnrichmentResult struct {
	BusinessID string `json:"businessId"`

	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
	Street      *string `json:"street,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Zip         *string `json:"zip,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	MapURL      *string `json:"mapUrl,omitempty"`
	Hours       *Hours  `json:"hours,omitempty"`

	Images              []Image      `json:"images"`
	SocialLinks         []SocialLink `json:"socialLinks"`
	Services            []string     `json:"services,omitempty"`
	Amenities           []string     `json:"amenities,omitempty"`
	SuggestedCategories []string     `json:"suggestedCategories,omitempty"`
	SchemaTypeGuess     *string      `json:"schemaTypeGuess,omitempty"`
	PriceTier           *PriceTier   `json:"priceTier,omitempty"`

	Reviews              []ReviewSummary `json:"reviews"`
	AggregateRating      *float64        `json:"aggregateRating,omitempty"`
	AggregateReviewCount int             `json:"aggregateReviewCount"`

	SourcesUsed     []string  `json:"sourcesUsed"`
	ConfidenceScore int       `json:"confidenceScore"`
	EnrichedAt      time.Time `json:"enrichedAt"`

	SEO *SEOCopy `json:"seo,omitempty"`
}

// ErrorKind classifies a per-source failure.
type ErrorKind string

const (
	ErrorKindTransient ErrorKind = "transient"
	ErrorKindPermanent ErrorKind = "permanent"
)

// SourceError records a failure that did not stop the pipeline.
type SourceError struct {
	Source  string    `json:"source"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// EnrichmentResponse is returned to callers. Partial success is success.
type EnrichmentResponse struct {
	Result MergedEnrichmentResult `json:"result"`
	Errors []SourceError          `json:"errors"`
}

// EnhancerSource is the SourceError.Source recorded for copy generation
// failures.
const EnhancerSource = "enhancer"

// AllTransient reports whether at least one source failed, every source
// failure was transient and no source contributed. Copy generation errors
// are not source failures and are ignored. Callers use it to decide whether
// a retry is worthwhile.
func (r *EnrichmentResponse) AllTransient() bool {
	if r == nil || len(r.Result.SourcesUsed) > 0 {
		return false
	}
	failed := 0
	for _, e := range r.Errors {
		if e.Source == EnhancerSource {
			continue
		}
		if e.Kind != ErrorKindTransient {
			return false
		}
		failed++
	}
	return failed > 0
}
