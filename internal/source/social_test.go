package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSocialLink(t *testing.T) {
	tests := []struct {
		raw      string
		ok       bool
		platform string
		handle   string
		url      string
	}{
		{"https://www.facebook.com/acmewinery", true, "facebook", "acmewinery", "https://www.facebook.com/acmewinery"},
		{"http://instagram.com/acme.wines/?hl=en", true, "instagram", "acme.wines", "https://instagram.com/acme.wines/"},
		{"https://x.com/@acme", true, "twitter", "acme", "https://x.com/@acme"},
		{"https://twitter.com/acme", true, "twitter", "acme", "https://twitter.com/acme"},
		{"https://www.linkedin.com/company/acme-winery/", true, "linkedin", "acme-winery", "https://www.linkedin.com/company/acme-winery/"},
		{"https://www.youtube.com/channel/UC123", true, "youtube", "UC123", "https://www.youtube.com/channel/UC123"},
		{"https://m.facebook.com/acme", true, "facebook", "acme", "https://m.facebook.com/acme"},
		{"https://www.yelp.com/biz/acme-winery-paso", true, "yelp", "acme-winery-paso", "https://www.yelp.com/biz/acme-winery-paso"},
		{"https://www.tiktok.com/@acme", true, "tiktok", "acme", "https://www.tiktok.com/@acme"},
		{"https://www.facebook.com/sharer/sharer.php?u=x", false, "", "", ""},
		{"https://twitter.com/intent/tweet", false, "", "", ""},
		{"https://www.facebook.com/", false, "", "", ""},
		{"https://acme.com/about", false, "", "", ""},
		{"/contact", false, "", "", ""},
		{"mailto:hi@acme.com", false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			link, ok := ParseSocialLink(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.platform, link.Platform)
			assert.Equal(t, tt.handle, link.Handle)
			assert.Equal(t, tt.url, link.URL)
		})
	}
}
