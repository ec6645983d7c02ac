package source

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
)

const maxPageBytes = 4 << 20

// JSON-LD types that describe the page rather than the business.
var ignoredLDTypes = map[string]bool{
	"WebSite": true, "WebPage": true, "BreadcrumbList": true,
	"ImageObject": true, "SiteNavigationElement": true, "SearchAction": true,
}

func (w *Website) scrapeHTML(ctx context.Context, base *url.URL) (*model.SourceFactBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.String(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "website: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; directory-enrich/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := w.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "website: fetch")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, eris.Wrap(err, "website: read body")
	}
	if kind := detectBlock(resp, body); kind != "" {
		return nil, &BlockedError{URL: base.String(), Kind: kind}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: base.String(), StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "website: parse html")
	}
	// Relative links resolve against the final URL after redirects.
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL
	}
	return ExtractHTML(base, doc), nil
}

// ExtractHTML reads business facts from a parsed page: meta tags, images,
// tel and mailto links, social profile anchors and JSON-LD.
func ExtractHTML(base *url.URL, doc *goquery.Document) *model.SourceFactBundle {
	var f siteFacts
	ld := findLocalBusiness(doc)
	if ld != nil {
		f = ld.facts()
	}

	if f.Name == "" {
		f.Name = metaContent(doc, `meta[property="og:site_name"]`)
	}
	if f.Name == "" {
		f.Name = titleName(doc.Find("title").First().Text())
	}
	if f.Description == "" {
		f.Description = metaContent(doc, `meta[name="description"]`)
	}
	if f.Description == "" {
		f.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	doc.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if f.Phone != "" {
			return false
		}
		href, _ := s.Attr("href")
		f.Phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		return true
	})
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if f.Email != "" {
			return false
		}
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		f.Email = strings.TrimSpace(addr)
		return true
	})

	if og := metaContent(doc, `meta[property="og:image"]`); og != "" {
		f.Images = append(f.Images, siteImage{URL: og})
	}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := imgSrc(s)
		if src == "" || strings.HasSuffix(strings.ToLower(src), ".svg") {
			return
		}
		alt := strings.TrimSpace(s.AttrOr("alt", ""))
		if f.Logo == "" && isLogo(s, src, alt) {
			f.Logo = src
			return
		}
		f.Images = append(f.Images, siteImage{URL: src, Alt: alt})
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		f.SocialLinks = append(f.SocialLinks, href)
	})

	b := factsToBundle(base, f)
	b.SocialLinks = firstPerPlatform(b.SocialLinks)
	return b
}

func metaContent(doc *goquery.Document, sel string) string {
	return strings.TrimSpace(doc.Find(sel).First().AttrOr("content", ""))
}

// titleName keeps the leading part of "Acme Winery | Home" style titles.
func titleName(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" | ", " – ", " - ", " :: "} {
		if i := strings.Index(title, sep); i > 0 {
			title = title[:i]
		}
	}
	return strings.TrimSpace(title)
}

func imgSrc(s *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v := strings.TrimSpace(s.AttrOr(attr, "")); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	return ""
}

func isLogo(s *goquery.Selection, src, alt string) bool {
	hay := strings.ToLower(src + " " + alt + " " + s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
	return strings.Contains(hay, "logo")
}

func firstPerPlatform(links []model.SocialLink) []model.SocialLink {
	seen := make(map[string]bool, len(links))
	out := links[:0]
	for _, l := range links {
		if seen[l.Platform] {
			continue
		}
		seen[l.Platform] = true
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ldBusiness is the subset of a schema.org LocalBusiness node we read.
type ldBusiness struct {
	Type        any    `json:"@type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Email       string `json:"email"`
	Logo        any    `json:"logo"`
	Image       any    `json:"image"`
	SameAs      any    `json:"sameAs"`
	Address     any    `json:"address"`
}

func (n *ldBusiness) typeName() string {
	switch t := n.Type.(type) {
	case string:
		return t
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && !ignoredLDTypes[s] {
				return s
			}
		}
	}
	return ""
}

func (n *ldBusiness) facts() siteFacts {
	f := siteFacts{
		Name:        n.Name,
		Description: n.Description,
		Phone:       n.Telephone,
		Email:       strings.TrimPrefix(n.Email, "mailto:"),
		Logo:        firstString(n.Logo, "url"),
		SocialLinks: stringList(n.SameAs),
	}
	if t := n.typeName(); t != "Organization" {
		f.SchemaType = t
	}
	if addr, ok := n.Address.(map[string]any); ok {
		f.Street, _ = addr["streetAddress"].(string)
		f.City, _ = addr["addressLocality"].(string)
		f.State, _ = addr["addressRegion"].(string)
		f.Zip, _ = addr["postalCode"].(string)
	}
	for _, u := range stringList(n.Image) {
		f.Images = append(f.Images, siteImage{URL: u})
	}
	return f
}

// findLocalBusiness returns the first JSON-LD node that looks like the
// business itself.
func findLocalBusiness(doc *goquery.Document) *ldBusiness {
	var found *ldBusiness
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(s.Text()), &raw); err != nil {
			return true
		}
		for _, node := range flattenLD(raw) {
			buf, err := json.Marshal(node)
			if err != nil {
				continue
			}
			var n ldBusiness
			if json.Unmarshal(buf, &n) != nil {
				continue
			}
			t := n.typeName()
			if t == "" || ignoredLDTypes[t] {
				continue
			}
			if n.Telephone != "" || n.Address != nil || t != "Organization" {
				found = &n
				return false
			}
		}
		return true
	})
	return found
}

func flattenLD(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, e := range t {
			out = append(out, flattenLD(e)...)
		}
		return out
	case map[string]any:
		if g, ok := t["@graph"]; ok {
			return flattenLD(g)
		}
		return []map[string]any{t}
	}
	return nil
}

// firstString reads a JSON-LD value that may be a string, an object with
// key, or a list of either.
func firstString(v any, key string) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]any:
		s, _ := t[key].(string)
		return s
	case []any:
		if len(t) > 0 {
			return firstString(t[0], key)
		}
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		var out []string
		for _, e := range t {
			if s := firstString(e, "url"); s != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]any:
		if s := firstString(t, "url"); s != "" {
			return []string{s}
		}
	}
	return nil
}
