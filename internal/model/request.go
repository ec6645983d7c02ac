package model

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrMissingName is returned when a request carries no business name.
var ErrMissingName = eris.New("model: business name is required")

// EnrichmentRequest identifies the business to enrich. It is built once per
// call and never mutated by the pipeline.
type EnrichmentRequest struct {
	BusinessID   string `json:"businessId" yaml:"businessId"`
	WebsiteURL   string `json:"websiteUrl,omitempty" yaml:"websiteUrl"`
	BusinessName string `json:"businessName" yaml:"businessName"`
	City         string `json:"city,omitempty" yaml:"city"`
}

var titleCaser = cases.Title(language.English)

// Normalize returns a trimmed copy of the request with the default city
// applied and a scheme added to bare website hosts.
func (r EnrichmentRequest) Normalize(defaultCity string) (EnrichmentRequest, error) {
	out := EnrichmentRequest{
		BusinessID:   strings.TrimSpace(r.BusinessID),
		WebsiteURL:   strings.TrimSpace(r.WebsiteURL),
		BusinessName: strings.TrimSpace(r.BusinessName),
		City:         strings.TrimSpace(r.City),
	}
	if out.BusinessName == "" {
		return out, ErrMissingName
	}
	if out.City == "" {
		out.City = strings.TrimSpace(defaultCity)
	}
	if out.City != "" {
		out.City = titleCaser.String(strings.ToLower(out.City))
	}
	if out.WebsiteURL != "" && !strings.Contains(out.WebsiteURL, "://") {
		out.WebsiteURL = "https://" + out.WebsiteURL
	}
	return out, nil
}

// Query returns the "name city" search string used by directory sources.
func (r EnrichmentRequest) Query() string {
	if r.City == "" {
		return r.BusinessName
	}
	return r.BusinessName + " " + r.City
}
