package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/places:searchText", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.rating")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.regularOpeningHours.weekdayDescriptions")
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.photos")

		var body textSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme Winery Paso Robles", body.TextQuery)
		assert.Equal(t, 1, body.PageSize)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TextSearchResponse{
			Places: []Place{
				{
					ID:                  "ChIJ-acme",
					DisplayName:         DisplayName{Text: "Acme Winery"},
					FormattedAddress:    "1 Vine Rd, Paso Robles, CA 93446, USA",
					NationalPhoneNumber: "(805) 555-2222",
					Rating:              4.5,
					UserRatingCount:     127,
					GoogleMapsURI:       "https://maps.google.com/?cid=1",
					RegularOpeningHours: &OpeningHours{WeekdayDescriptions: []string{"Monday: Closed"}},
					Photos:              []Photo{{Name: "places/ChIJ-acme/photos/p1", WidthPx: 800}},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Acme Winery Paso Robles")

	require.NoError(t, err)
	require.Len(t, resp.Places, 1)
	p := resp.Places[0]
	assert.Equal(t, "Acme Winery", p.DisplayName.Text)
	assert.InDelta(t, 4.5, p.Rating, 0.001)
	assert.Equal(t, 127, p.UserRatingCount)
	assert.Equal(t, "(805) 555-2222", p.NationalPhoneNumber)
	require.NotNil(t, p.RegularOpeningHours)
	assert.Equal(t, []string{"Monday: Closed"}, p.RegularOpeningHours.WeekdayDescriptions)
	require.Len(t, p.Photos, 1)
	assert.Equal(t, "places/ChIJ-acme/photos/p1", p.Photos[0].Name)
}

func TestTextSearch_NoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "Nonexistent Corp")

	require.NoError(t, err)
	assert.Empty(t, resp.Places)
}

func TestTextSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "invalid API key"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(context.Background(), "test query")

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "403")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestTextSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		// Slow response; the context cancels first.
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately.

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.TextSearch(ctx, "test")

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestPhotoMedia_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/places/abc/photos/p1/media", r.URL.Path)
		assert.Equal(t, "1200", r.URL.Query().Get("maxWidthPx"))
		assert.Equal(t, "true", r.URL.Query().Get("skipHttpRedirect"))
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))

		_ = json.NewEncoder(w).Encode(PhotoMediaResponse{
			Name:     "places/abc/photos/p1/media",
			PhotoURI: "https://lh3.googleusercontent.com/p1",
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.PhotoMedia(context.Background(), "places/abc/photos/p1", 1200)

	require.NoError(t, err)
	assert.Equal(t, "https://lh3.googleusercontent.com/p1", resp.PhotoURI)
}

func TestPhotoMedia_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	resp, err := client.PhotoMedia(context.Background(), "places/abc/photos/gone", 400)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "404")
}

func TestPhotoReferenceURL(t *testing.T) {
	client := NewClient("secret-key", WithBaseURL("https://places.example"))
	got := client.PhotoReferenceURL("places/abc/photos/p1", 800)
	assert.Equal(t, "https://places.example/places/abc/photos/p1/media?maxWidthPx=800", got)
	assert.NotContains(t, got, "secret-key")
}
