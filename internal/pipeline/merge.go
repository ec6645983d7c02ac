package pipeline

import (
	"math"
	"net/url"
	"strings"

	"github.com/sells-group/directory-enrich/internal/model"
)

// DefaultImageCap bounds the merged image list.
const DefaultImageCap = 20

var (
	identitySources   = []model.SourceName{model.SourceWebsite, model.SourcePlaces}
	reviewsOnly       = []model.SourceName{model.SourceReviews}
	collectionSources = []model.SourceName{model.SourceWebsite, model.SourcePlaces, model.SourceReviews}
)

// fieldRule merges one field. For a first-wins rule, sources are tried in
// order until apply reports it took a value. A collect rule applies every
// source in order.
type fieldRule struct {
	name    string
	sources []model.SourceName
	collect bool
	apply   func(dst *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool
}

func scalar(get func(*model.SourceFactBundle) *string, set func(*model.MergedEnrichmentResult, *string)) func(*model.MergedEnrichmentResult, *model.SourceFactBundle) bool {
	return func(dst *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		v := get(b)
		if v == nil || strings.TrimSpace(*v) == "" {
			return false
		}
		s := strings.TrimSpace(*v)
		set(dst, &s)
		return true
	}
}

var mergeRules = []fieldRule{
	{name: "name", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.Name },
		func(r *model.MergedEnrichmentResult, v *string) { r.Name = v })},
	{name: "description", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.Description },
		func(r *model.MergedEnrichmentResult, v *string) { r.Description = v })},
	{name: "phone", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.Phone },
		func(r *model.MergedEnrichmentResult, v *string) { r.Phone = v })},
	{name: "email", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.Email },
		func(r *model.MergedEnrichmentResult, v *string) { r.Email = v })},
	{name: "address", sources: identitySources, apply: mergeAddress},
	{name: "locality", sources: identitySources, apply: mergeLocality},
	{name: "hours", sources: identitySources, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		if b.Hours.IsEmpty() {
			return false
		}
		h := make(model.Hours, len(*b.Hours))
		for d, v := range *b.Hours {
			h[d] = v
		}
		r.Hours = &h
		return true
	}},
	{name: "logo", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.Logo },
		func(r *model.MergedEnrichmentResult, v *string) { r.Logo = v })},
	{name: "map_url", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.MapURL },
		func(r *model.MergedEnrichmentResult, v *string) { r.MapURL = v })},
	{name: "schema_type", sources: identitySources, apply: scalar(
		func(b *model.SourceFactBundle) *string { return b.SchemaTypeGuess },
		func(r *model.MergedEnrichmentResult, v *string) { r.SchemaTypeGuess = v })},
	{name: "price_tier", sources: reviewsOnly, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		if b.PriceTier == nil || *b.PriceTier < model.PriceBudget || *b.PriceTier > model.PriceLuxury {
			return false
		}
		t := *b.PriceTier
		r.PriceTier = &t
		return true
	}},
	{name: "categories", sources: reviewsOnly, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		r.SuggestedCategories = model.CleanList(b.Categories)
		return len(r.SuggestedCategories) > 0
	}},
	{name: "images", sources: collectionSources, collect: true, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		r.Images = append(r.Images, b.Images...)
		return true
	}},
	{name: "social_links", sources: collectionSources, collect: true, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		r.SocialLinks = append(r.SocialLinks, b.SocialLinks...)
		return true
	}},
	{name: "services", sources: collectionSources, collect: true, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		r.Services = append(r.Services, b.Services...)
		return true
	}},
	{name: "amenities", sources: collectionSources, collect: true, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		r.Amenities = append(r.Amenities, b.Amenities...)
		return true
	}},
	{name: "reviews", sources: collectionSources, collect: true, apply: func(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
		if !validRating(b.Rating) {
			return false
		}
		tag := b.Rating.Source
		if tag == "" {
			tag = string(b.Source)
		}
		link := model.Deref(b.ProfileURL)
		if link == "" {
			link = model.Deref(b.MapURL)
		}
		r.Reviews = append(r.Reviews, model.ReviewSummary{
			Source:      tag,
			Rating:      b.Rating.Value,
			ReviewCount: b.Rating.Count,
			URL:         link,
		})
		return true
	}},
}

// mergeAddress takes the address parts from one source together so a street
// from one provider is never paired with a city from another. Only a source
// with a street supplies the address.
func mergeAddress(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
	if model.Str(model.Deref(b.Street)) == nil {
		return false
	}
	setAddress(r, b)
	return true
}

// mergeLocality fills city, state and zip from the first source that has
// any of them when no source had a street.
func mergeLocality(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) bool {
	if r.Street != nil {
		return true
	}
	setAddress(r, b)
	return r.City != nil || r.State != nil || r.Zip != nil
}

func setAddress(r *model.MergedEnrichmentResult, b *model.SourceFactBundle) {
	trim := func(s *string) *string { return model.Str(model.Deref(s)) }
	r.Street, r.City, r.State, r.Zip = trim(b.Street), trim(b.City), trim(b.State), trim(b.Zip)
}

// validRating rejects ratings outside 0..5, non-finite values and negative
// counts.
func validRating(rt *model.Rating) bool {
	if rt == nil || rt.Count < 0 {
		return false
	}
	v := rt.Value
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 5
}

// Merge reconciles source bundles into one result. Nil and empty bundles
// are ignored; the order of the arguments does not matter because
// precedence comes from each bundle's Source.
func Merge(bundles ...*model.SourceFactBundle) model.MergedEnrichmentResult {
	return mergeWithCap(DefaultImageCap, bundles...)
}

func mergeWithCap(imageCap int, bundles ...*model.SourceFactBundle) model.MergedEnrichmentResult {
	bySource := make(map[model.SourceName]*model.SourceFactBundle, len(bundles))
	for _, b := range bundles {
		if b.IsEmpty() {
			continue
		}
		if _, dup := bySource[b.Source]; !dup {
			bySource[b.Source] = b
		}
	}

	r := model.MergedEnrichmentResult{
		Images:      []model.Image{},
		SocialLinks: []model.SocialLink{},
		Reviews:     []model.ReviewSummary{},
		SourcesUsed: []string{},
	}
	for _, src := range collectionSources {
		if _, ok := bySource[src]; ok {
			r.SourcesUsed = append(r.SourcesUsed, string(src))
		}
	}

	for _, rule := range mergeRules {
		for _, src := range rule.sources {
			b, ok := bySource[src]
			if !ok {
				continue
			}
			if rule.apply(&r, b) && !rule.collect {
				break
			}
		}
	}

	r.Images = DedupImages(r.Images, imageCap)
	r.SocialLinks = DedupSocialLinks(r.SocialLinks)
	r.Services = model.CleanList(r.Services)
	r.Amenities = model.CleanList(r.Amenities)
	r.AggregateRating, r.AggregateReviewCount = AggregateRating(r.Reviews)
	return r
}

// DedupImages drops blank URLs and repeats of the same image, keeping the
// first occurrence, and caps the result at limit (no cap when limit <= 0).
// Two URLs are the same image when they match ignoring scheme, host case,
// query string and fragment.
func DedupImages(images []model.Image, limit int) []model.Image {
	out := make([]model.Image, 0, len(images))
	seen := make(map[string]bool, len(images))
	for _, img := range images {
		img.URL = strings.TrimSpace(img.URL)
		if img.URL == "" {
			continue
		}
		key := imageKey(img.URL)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, img)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func imageKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			return raw[:i]
		}
		return raw
	}
	return strings.ToLower(u.Host) + u.EscapedPath()
}

// DedupSocialLinks keeps the first link per platform.
func DedupSocialLinks(links []model.SocialLink) []model.SocialLink {
	out := make([]model.SocialLink, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		platform := strings.ToLower(strings.TrimSpace(l.Platform))
		if platform == "" || strings.TrimSpace(l.URL) == "" || seen[platform] {
			continue
		}
		seen[platform] = true
		l.Platform = platform
		out = append(out, l)
	}
	return out
}
