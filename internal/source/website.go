package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-enrich/internal/hours"
	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/pkg/firecrawl"
)

const extractPrompt = `Extract facts about the business that owns this website. ` +
	`Only report what the page states. Leave a field empty when it is not on the page. ` +
	`Hours must be one line per weekday such as "Monday: 9:00 AM - 5:00 PM".`

// extractSchema is the JSON schema sent with the Firecrawl scrape.
var extractSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":        map[string]any{"type": "string"},
		"description": map[string]any{"type": "string"},
		"phone":       map[string]any{"type": "string"},
		"email":       map[string]any{"type": "string"},
		"street":      map[string]any{"type": "string"},
		"city":        map[string]any{"type": "string"},
		"state":       map[string]any{"type": "string"},
		"zip":         map[string]any{"type": "string"},
		"hours":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"services":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"amenities":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"logo":        map[string]any{"type": "string"},
		"images": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"url": map[string]any{"type": "string"},
					"alt": map[string]any{"type": "string"},
				},
			},
		},
		"social_links": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"schema_type":  map[string]any{"type": "string"},
	},
}

// siteFacts mirrors extractSchema.
type siteFacts struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Phone       string      `json:"phone"`
	Email       string      `json:"email"`
	Street      string      `json:"street"`
	City        string      `json:"city"`
	State       string      `json:"state"`
	Zip         string      `json:"zip"`
	Hours       []string    `json:"hours"`
	Services    []string    `json:"services"`
	Amenities   []string    `json:"amenities"`
	Logo        string      `json:"logo"`
	Images      []siteImage `json:"images"`
	SocialLinks []string    `json:"social_links"`
	SchemaType  string      `json:"schema_type"`
}

type siteImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// WebsiteOptions configures the website adapter.
type WebsiteOptions struct {
	Timeout   time.Duration
	MaxImages int
}

// Website extracts facts from the business's own site. It uses Firecrawl
// structured extraction when a client is configured and falls back to
// fetching the page and reading its HTML otherwise.
type Website struct {
	firecrawl firecrawl.Client
	http      *http.Client
	opts      WebsiteOptions
}

// NewWebsite creates the website adapter. fc may be nil.
func NewWebsite(fc firecrawl.Client, hc *http.Client, opts WebsiteOptions) *Website {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = 12
	}
	return &Website{firecrawl: fc, http: hc, opts: opts}
}

// Name implements Adapter.
func (w *Website) Name() model.SourceName { return model.SourceWebsite }

// Fetch implements Adapter.
func (w *Website) Fetch(ctx context.Context, req model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	if req.WebsiteURL == "" {
		return nil, ErrNoMatch
	}
	base, err := url.Parse(req.WebsiteURL)
	if err != nil || base.Host == "" {
		return nil, eris.Wrapf(ErrNoMatch, "website: invalid url %q", req.WebsiteURL)
	}

	ctx, cancel := withTimeout(ctx, w.opts.Timeout)
	defer cancel()

	var b *model.SourceFactBundle
	if w.firecrawl != nil {
		b, err = w.extract(ctx, base)
	} else {
		b, err = w.scrapeHTML(ctx, base)
	}
	if err != nil {
		return nil, err
	}
	if len(b.Images) > w.opts.MaxImages {
		b.Images = b.Images[:w.opts.MaxImages]
	}
	return b, nil
}

func (w *Website) extract(ctx context.Context, base *url.URL) (*model.SourceFactBundle, error) {
	resp, err := w.firecrawl.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             base.String(),
		Formats:         []string{firecrawl.FormatJSON},
		OnlyMainContent: false,
		TimeoutMs:       int(w.opts.Timeout / time.Millisecond),
		JSONOptions: &firecrawl.JSONOptions{
			Prompt: extractPrompt,
			Schema: extractSchema,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "website: extract")
	}

	var facts siteFacts
	if len(resp.Data.JSON) > 0 {
		if err := json.Unmarshal(resp.Data.JSON, &facts); err != nil {
			return nil, eris.Wrap(err, "website: decode extraction")
		}
	}
	if facts.Description == "" {
		facts.Description = resp.Data.Metadata.Description
	}

	b := factsToBundle(base, facts)
	if og := resolveURL(base, resp.Data.Metadata.OGImage); og != "" {
		b.Images = append([]model.Image{{URL: og, Source: string(model.SourceWebsite)}}, b.Images...)
	}
	zap.L().Debug("website: extracted",
		zap.String("url", base.String()),
		zap.Int("images", len(b.Images)),
		zap.Int("social_links", len(b.SocialLinks)),
	)
	return b, nil
}

func factsToBundle(base *url.URL, f siteFacts) *model.SourceFactBundle {
	b := &model.SourceFactBundle{
		Source:          model.SourceWebsite,
		Name:            model.Str(f.Name),
		Description:     model.Str(f.Description),
		Phone:           model.Str(f.Phone),
		Email:           model.Str(strings.TrimPrefix(f.Email, "mailto:")),
		Street:          model.Str(f.Street),
		City:            model.Str(f.City),
		State:           model.Str(f.State),
		Zip:             model.Str(f.Zip),
		Logo:            model.Str(resolveURL(base, f.Logo)),
		SchemaTypeGuess: model.Str(f.SchemaType),
		Hours:           hours.ParseWeekdayDescriptions(f.Hours),
		Services:        model.CleanList(f.Services),
		Amenities:       model.CleanList(f.Amenities),
	}
	for _, img := range f.Images {
		if u := resolveURL(base, img.URL); u != "" {
			b.Images = append(b.Images, model.Image{
				URL:    u,
				Source: string(model.SourceWebsite),
				Alt:    strings.TrimSpace(img.Alt),
			})
		}
	}
	for _, raw := range f.SocialLinks {
		if link, ok := ParseSocialLink(resolveURL(base, raw)); ok {
			b.SocialLinks = append(b.SocialLinks, link)
		}
	}
	return b
}

// resolveURL makes ref absolute against base. Data URIs and unparsable
// references yield "".
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(u)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
