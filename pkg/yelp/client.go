// Package yelp is a minimal client for the Yelp Fusion business API.
package yelp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.yelp.com/v3"

// Client performs Yelp Fusion API operations.
type Client interface {
	Search(ctx context.Context, term, location string, limit int) (*SearchResponse, error)
	Business(ctx context.Context, id string) (*Business, error)
}

// SearchResponse is the response from GET /businesses/search.
type SearchResponse struct {
	Total      int        `json:"total"`
	Businesses []Business `json:"businesses"`
}

// Business is a Yelp business. Search results carry a subset of the fields
// returned by the details endpoint.
type Business struct {
	ID          string     `json:"id"`
	Alias       string     `json:"alias"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	Phone       string     `json:"phone"`
	Rating      float64    `json:"rating"`
	ReviewCount int        `json:"review_count"`
	Price       string     `json:"price"`
	ImageURL    string     `json:"image_url"`
	Photos      []string   `json:"photos"`
	Categories  []Category `json:"categories"`
	IsClosed    bool       `json:"is_closed"`
	Location    Location   `json:"location"`
}

// Category is a Yelp business category.
type Category struct {
	Alias string `json:"alias"`
	Title string `json:"title"`
}

// Location is a Yelp business address.
type Location struct {
	Address1       string   `json:"address1"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	ZipCode        string   `json:"zip_code"`
	DisplayAddress []string `json:"display_address"`
}

// APIError is returned when Yelp responds with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yelp: unexpected status %d: %s", e.StatusCode, e.Body)
}

// HTTPStatus returns the response status code.
func (e *APIError) HTTPStatus() int { return e.StatusCode }

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Yelp Fusion API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, term, location string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("term", term)
	q.Set("location", location)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	var result SearchResponse
	if err := c.get(ctx, "/businesses/search?"+q.Encode(), &result); err != nil {
		return nil, eris.Wrap(err, "yelp: search")
	}
	return &result, nil
}

func (c *httpClient) Business(ctx context.Context, id string) (*Business, error) {
	var result Business
	if err := c.get(ctx, "/businesses/"+url.PathEscape(id), &result); err != nil {
		return nil, eris.Wrapf(err, "yelp: business %s", id)
	}
	return &result, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
