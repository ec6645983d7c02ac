package source

import (
	"net/url"
	"strings"

	"github.com/sells-group/directory-enrich/internal/model"
)

var socialHosts = map[string]string{
	"facebook.com":  "facebook",
	"fb.com":        "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"linkedin.com":  "linkedin",
	"youtube.com":   "youtube",
	"tiktok.com":    "tiktok",
	"pinterest.com": "pinterest",
	"yelp.com":      "yelp",
}

// Path segments that prefix the real handle.
var handlePrefixes = map[string]bool{
	"company": true, "in": true, "pages": true, "biz": true,
	"channel": true, "user": true, "c": true, "pg": true,
}

// Paths that are share or login widgets rather than a profile.
var nonProfilePaths = map[string]bool{
	"sharer": true, "sharer.php": true, "share": true, "intent": true,
	"login": true, "dialog": true, "plugins": true, "home.php": true,
}

// ParseSocialLink recognizes a profile URL on a known platform.
func ParseSocialLink(raw string) (model.SocialLink, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return model.SocialLink{}, false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	platform, ok := socialHosts[host]
	if !ok {
		for h, p := range socialHosts {
			if strings.HasSuffix(host, "."+h) {
				platform, ok = p, true
				break
			}
		}
	}
	if !ok {
		return model.SocialLink{}, false
	}

	segs := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segs) == 0 || nonProfilePaths[strings.ToLower(segs[0])] {
		return model.SocialLink{}, false
	}
	handle := segs[0]
	if handlePrefixes[strings.ToLower(handle)] && len(segs) > 1 {
		handle = segs[1]
	}

	u.Scheme = "https"
	u.RawQuery = ""
	u.Fragment = ""
	return model.SocialLink{
		Platform: platform,
		URL:      u.String(),
		Handle:   strings.TrimPrefix(handle, "@"),
	}, true
}
