package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Firecrawl API.
const defaultBaseURL = "https://api.firecrawl.dev/v1"

// FormatJSON asks Firecrawl to run LLM extraction against the page.
const FormatJSON = "json"

// Client defines the Firecrawl API operations.
type Client interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
}

// ScrapeRequest is the body for POST /scrape.
type ScrapeRequest struct {
	URL             string       `json:"url"`
	Formats         []string     `json:"formats,omitempty"`
	OnlyMainContent bool         `json:"onlyMainContent,omitempty"`
	TimeoutMs       int          `json:"timeout,omitempty"`
	JSONOptions     *JSONOptions `json:"jsonOptions,omitempty"`
}

// JSONOptions configures structured extraction: a natural-language
// instruction plus a JSON schema the result must follow.
type JSONOptions struct {
	Prompt       string         `json:"prompt,omitempty"`
	SystemPrompt string         `json:"systemPrompt,omitempty"`
	Schema       map[string]any `json:"schema,omitempty"`
}

// ScrapeResponse is the response from POST /scrape.
type ScrapeResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Data    PageData `json:"data"`
}

// PageData represents a single page result from Firecrawl.
type PageData struct {
	Markdown string          `json:"markdown,omitempty"`
	JSON     json.RawMessage `json:"json,omitempty"`
	Metadata Metadata        `json:"metadata"`
}

// Metadata describes the scraped page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceURL   string `json:"sourceURL"`
	StatusCode  int    `json:"statusCode"`
	OGImage     string `json:"ogImage,omitempty"`
}

// APIError is returned when Firecrawl responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firecrawl: HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// httpClient implements Client using net/http.
type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new Firecrawl client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error) {
	var resp ScrapeResponse
	if err := c.post(ctx, "/scrape", req, &resp); err != nil {
		return nil, eris.Wrap(err, "firecrawl: scrape")
	}
	if !resp.Success {
		return nil, eris.Errorf("firecrawl: scrape %s unsuccessful: %s", req.URL, resp.Error)
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
