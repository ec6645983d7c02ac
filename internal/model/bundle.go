package model

import "strings"

// SourceName identifies a source adapter.
type SourceName string

const (
	SourceWebsite SourceName = "website"
	SourcePlaces  SourceName = "places"
	SourceReviews SourceName = "reviews"
)

// Image is a reference to a fetchable picture of the business.
type Image struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Alt    string `json:"alt,omitempty"`
}

// SocialLink is a profile of the business on a social platform.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
	Handle   string `json:"handle,omitempty"`
}

// Rating is a rating/review-count pair reported by one source. Source is
// the provider tag shown to callers ("google", "yelp").
type Rating struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// SourceFactBundle is the partial set of facts one adapter found. Every
// scalar is a pointer: nil means the source did not supply the field, which
// is distinct from a present empty value.
type SourceFactBundle struct {
	Source SourceName `json:"source"`

	Name            *string    `json:"name,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	Email           *string    `json:"email,omitempty"`
	Street          *string    `json:"street,omitempty"`
	City            *string    `json:"city,omitempty"`
	State           *string    `json:"state,omitempty"`
	Zip             *string    `json:"zip,omitempty"`
	Logo            *string    `json:"logo,omitempty"`
	MapURL          *string    `json:"mapUrl,omitempty"`
	ProfileURL      *string    `json:"profileUrl,omitempty"`
	SchemaTypeGuess *string    `json:"schemaTypeGuess,omitempty"`
	Hours           *Hours     `json:"hours,omitempty"`
	PriceTier       *PriceTier `json:"priceTier,omitempty"`
	Rating          *Rating    `json:"rating,omitempty"`

	Images      []Image      `json:"images,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
	Services    []string     `json:"services,omitempty"`
	Amenities   []string     `json:"amenities,omitempty"`
	Categories  []string     `json:"categories,omitempty"`
}

// IsEmpty reports whether the bundle carries no facts at all.
func (b *SourceFactBundle) IsEmpty() bool {
	if b == nil {
		return true
	}
	for _, s := range []*string{
		b.Name, b.Description, b.Phone, b.Email, b.Street, b.City, b.State,
		b.Zip, b.Logo, b.MapURL, b.ProfileURL, b.SchemaTypeGuess,
	} {
		if s != nil {
			return false
		}
	}
	if !b.Hours.IsEmpty() || b.PriceTier != nil || b.Rating != nil {
		return false
	}
	return len(b.Images) == 0 && len(b.SocialLinks) == 0 && len(b.Services) == 0 &&
		len(b.Amenities) == 0 && len(b.Categories) == 0
}

// Str returns a pointer to the trimmed value, or nil when it is blank.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CleanList trims entries and drops blanks and case-insensitive duplicates.
func CleanList(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
