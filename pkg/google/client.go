package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://places.googleapis.com/v1"

// textSearchFieldMask lists the Place fields requested from Text Search.
var textSearchFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.addressComponents",
	"places.nationalPhoneNumber",
	"places.internationalPhoneNumber",
	"places.rating",
	"places.userRatingCount",
	"places.googleMapsUri",
	"places.websiteUri",
	"places.regularOpeningHours.weekdayDescriptions",
	"places.photos",
}, ",")

// Client performs Google Places API operations.
type Client interface {
	TextSearch(ctx context.Context, query string) (*TextSearchResponse, error)
	PhotoMedia(ctx context.Context, photoName string, maxWidthPx int) (*PhotoMediaResponse, error)
	PhotoReferenceURL(photoName string, maxWidthPx int) string
}

// TextSearchResponse is the response from Places Text Search.
type TextSearchResponse struct {
	Places []Place `json:"places"`
}

// Place represents a place returned by the API.
type Place struct {
	ID                       string             `json:"id"`
	DisplayName              DisplayName        `json:"displayName"`
	FormattedAddress         string             `json:"formattedAddress"`
	AddressComponents        []AddressComponent `json:"addressComponents"`
	NationalPhoneNumber      string             `json:"nationalPhoneNumber"`
	InternationalPhoneNumber string             `json:"internationalPhoneNumber"`
	Rating                   float64            `json:"rating"`
	UserRatingCount          int                `json:"userRatingCount"`
	GoogleMapsURI            string             `json:"googleMapsUri"`
	WebsiteURI               string             `json:"websiteUri"`
	RegularOpeningHours      *OpeningHours      `json:"regularOpeningHours,omitempty"`
	Photos                   []Photo            `json:"photos"`
}

// DisplayName holds the place's display name.
type DisplayName struct {
	Text string `json:"text"`
}

// AddressComponent is one structured part of a place's address.
type AddressComponent struct {
	LongText  string   `json:"longText"`
	ShortText string   `json:"shortText"`
	Types     []string `json:"types"`
}

// OpeningHours holds the human-readable weekly schedule.
type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
}

// Photo is a reference to a place photo. Name is the resource name used to
// fetch the media ("places/{id}/photos/{ref}").
type Photo struct {
	Name     string `json:"name"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

// PhotoMediaResponse is the response from the photo media endpoint when
// redirects are skipped.
type PhotoMediaResponse struct {
	Name     string `json:"name"`
	PhotoURI string `json:"photoUri"`
}

// APIError is returned when the Places API responds with a non-200 status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("google: unexpected status %d: %s", e.StatusCode, e.Body)
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

// NewClient creates a Google Places API client.
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

type textSearchRequest struct {
	TextQuery string `json:"textQuery"`
	PageSize  int    `json:"pageSize,omitempty"`
}

func (c *httpClient) TextSearch(ctx context.Context, query string) (*TextSearchResponse, error) {
	body, err := json.Marshal(textSearchRequest{TextQuery: query, PageSize: 1})
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/places:searchText", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", textSearchFieldMask)

	var result TextSearchResponse
	if err := c.do(req, &result); err != nil {
		return nil, eris.Wrap(err, "google: text search")
	}
	return &result, nil
}

func (c *httpClient) PhotoMedia(ctx context.Context, photoName string, maxWidthPx int) (*PhotoMediaResponse, error) {
	q := url.Values{}
	q.Set("maxWidthPx", fmt.Sprintf("%d", maxWidthPx))
	q.Set("skipHttpRedirect", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+photoName+"/media?"+q.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: create request")
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)

	var result PhotoMediaResponse
	if err := c.do(req, &result); err != nil {
		return nil, eris.Wrapf(err, "google: photo media %s", photoName)
	}
	return &result, nil
}

// PhotoReferenceURL returns the unresolved media URL for a photo. It carries
// no credentials; consumers must add their own key to fetch it.
func (c *httpClient) PhotoReferenceURL(photoName string, maxWidthPx int) string {
	return fmt.Sprintf("%s/%s/media?maxWidthPx=%d", c.baseURL, photoName, maxWidthPx)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "unmarshal response")
	}
	return nil
}
