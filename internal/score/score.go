// Package score computes a 0-100 completeness score for a merged business
// record.
package score

import (
	"unicode/utf8"

	"github.com/sells-group/directory-enrich/internal/model"
)

// Criterion weights. They sum to 100.
const (
	WeightName           = 10
	WeightDescription    = 15
	WeightPhone          = 10
	WeightAddress        = 10
	WeightHours          = 10
	WeightImages         = 10
	WeightSocial         = 10
	WeightReviews        = 15
	WeightSEOTitle       = 5
	WeightSEODescription = 5
)

// Thresholds for the count-based criteria.
const (
	MinDescriptionRunes = 100
	MinImages           = 3
)

// Criterion is one scored check.
type Criterion struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Points int    `json:"points"`
}

type check struct {
	name   string
	weight int
	met    func(r *model.MergedEnrichmentResult) bool
}

var checks = []check{
	{"name", WeightName, func(r *model.MergedEnrichmentResult) bool { return present(r.Name) }},
	{"description", WeightDescription, func(r *model.MergedEnrichmentResult) bool {
		return utf8.RuneCountInString(model.Deref(r.Description)) >= MinDescriptionRunes
	}},
	{"phone", WeightPhone, func(r *model.MergedEnrichmentResult) bool { return present(r.Phone) }},
	{"address", WeightAddress, func(r *model.MergedEnrichmentResult) bool { return present(r.Street) }},
	{"hours", WeightHours, func(r *model.MergedEnrichmentResult) bool { return !r.Hours.IsEmpty() }},
	{"images", WeightImages, func(r *model.MergedEnrichmentResult) bool { return len(r.Images) >= MinImages }},
	{"social", WeightSocial, func(r *model.MergedEnrichmentResult) bool { return len(r.SocialLinks) >= 1 }},
	{"reviews", WeightReviews, func(r *model.MergedEnrichmentResult) bool { return len(r.Reviews) >= 1 }},
	{"seo_title", WeightSEOTitle, func(r *model.MergedEnrichmentResult) bool {
		return r.SEO != nil && r.SEO.Title != ""
	}},
	{"seo_description", WeightSEODescription, func(r *model.MergedEnrichmentResult) bool {
		return r.SEO != nil && r.SEO.MetaDescription != ""
	}},
}

// Breakdown returns the points awarded for each criterion.
func Breakdown(r *model.MergedEnrichmentResult) []Criterion {
	out := make([]Criterion, 0, len(checks))
	for _, c := range checks {
		cr := Criterion{Name: c.name, Weight: c.weight}
		if r != nil && c.met(r) {
			cr.Points = c.weight
		}
		out = append(out, cr)
	}
	return out
}

// Compute returns the confidence score for r, clamped to [0, 100].
func Compute(r *model.MergedEnrichmentResult) int {
	total := 0
	for _, c := range Breakdown(r) {
		total += c.Points
	}
	return min(max(total, 0), 100)
}

func present(s *string) bool {
	return s != nil && *s != ""
}
