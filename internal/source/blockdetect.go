package source

import (
	"fmt"
	"net/http"
	"strings"
)

// BlockKind names the anti-bot wall a page fetch ran into.
type BlockKind string

const (
	BlockCloudflare BlockKind = "cloudflare"
	BlockCaptcha    BlockKind = "captcha"
)

// BlockedError is returned when the website answers a plain fetch with a
// challenge page instead of content. Retrying without a browser does not
// help, so it classifies as permanent.
type BlockedError struct {
	URL  string
	Kind BlockKind
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("source: GET %s: blocked by %s", e.URL, e.Kind)
}

// detectBlock inspects a response for challenge walls. It returns "" when
// the page looks like real content.
func detectBlock(resp *http.Response, body []byte) BlockKind {
	if resp == nil {
		return ""
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-mitigated") != "" ||
			strings.EqualFold(resp.Header.Get("Server"), "cloudflare") {
			return BlockCloudflare
		}
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") {
		return BlockCloudflare
	}
	if strings.Contains(lower, "g-recaptcha") ||
		strings.Contains(lower, "h-captcha") ||
		strings.Contains(lower, "captcha-container") {
		return BlockCaptcha
	}
	return ""
}
