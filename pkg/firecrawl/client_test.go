package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("test-api-key", WithBaseURL(srv.URL))
	return srv, c
}

func TestScrape(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantTitle  string
		wantJSON   string
		wantErr    bool
		wantAPIErr bool
		wantStatus int
	}{
		{
			name: "happy path with json extraction",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/scrape", r.URL.Path)
				assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req ScrapeRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "https://acme.com", req.URL)
				assert.Equal(t, []string{FormatJSON}, req.Formats)
				require.NotNil(t, req.JSONOptions)
				assert.Equal(t, "extract business facts", req.JSONOptions.Prompt)
				assert.Equal(t, "object", req.JSONOptions.Schema["type"])

				w.Write([]byte(`{"success":true,"data":{"json":{"name":"Acme"},"metadata":{"title":"Acme Home","statusCode":200}}}`))
			},
			wantTitle: "Acme Home",
			wantJSON:  `{"name":"Acme"}`,
		},
		{
			name: "unsuccessful body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"success":false,"error":"blocked by robots"}`))
			},
			wantErr: true,
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Unauthorized"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantStatus: 401,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limited"}`))
			},
			wantErr:    true,
			wantAPIErr: true,
			wantStatus: 429,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, tt.handler)
			resp, err := c.Scrape(context.Background(), ScrapeRequest{
				URL:     "https://acme.com",
				Formats: []string{FormatJSON},
				JSONOptions: &JSONOptions{
					Prompt: "extract business facts",
					Schema: map[string]any{"type": "object"},
				},
			})

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantAPIErr {
					var apiErr *APIError
					require.ErrorAs(t, err, &apiErr)
					assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantTitle, resp.Data.Metadata.Title)
			assert.JSONEq(t, tt.wantJSON, string(resp.Data.JSON))
		})
	}
}

func TestContextCancellation(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel immediately

	_, err := c.Scrape(ctx, ScrapeRequest{URL: "https://example.com"})
	require.Error(t, err)
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()
	e := &APIError{StatusCode: 429, Body: `{"error":"rate limited"}`}
	assert.Equal(t, `firecrawl: HTTP 429: {"error":"rate limited"}`, e.Error())
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}
	c := NewClient("key", WithHTTPClient(customClient))
	hc := c.(*httpClient)
	assert.Equal(t, customClient, hc.http)
}

func TestMalformedJSON(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{not json`))
	})

	_, err := c.Scrape(context.Background(), ScrapeRequest{URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
