package pipeline

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/score"
)

func TestMerge_Precedence(t *testing.T) {
	r := Merge(websiteBundle(), placesBundle(), reviewsBundle())

	// Website wins every scalar it has.
	assert.Equal(t, "Acme Winery", model.Deref(r.Name))
	assert.Equal(t, "(805) 555-0100", model.Deref(r.Phone))
	assert.Equal(t, "100 Vineyard Dr", model.Deref(r.Street))
	assert.Equal(t, "Paso Robles", model.Deref(r.City))

	// Places fills what the website lacks.
	assert.Equal(t, "https://maps.google.com/?cid=1", model.Deref(r.MapURL))
	require.NotNil(t, r.Hours)
	assert.True(t, (*r.Hours)[model.Sunday].Closed)

	// Price tier and categories come only from reviews.
	require.NotNil(t, r.PriceTier)
	assert.Equal(t, model.PriceModerate, *r.PriceTier)
	assert.Equal(t, []string{"Wineries", "Venues & Event Spaces"}, r.SuggestedCategories)

	assert.Equal(t, []string{"website", "places", "reviews"}, r.SourcesUsed)
}

func TestMerge_PlacesFallback(t *testing.T) {
	r := Merge(placesBundle(), reviewsBundle())

	assert.Equal(t, "Acme Winery & Vineyards", model.Deref(r.Name))
	assert.Equal(t, "+1 805-555-9999", model.Deref(r.Phone))
	assert.Equal(t, "1 Other Rd", model.Deref(r.Street))
	assert.Equal(t, "Templeton", model.Deref(r.City))
}

func TestMerge_ReviewsNeverSupplyIdentity(t *testing.T) {
	r := Merge(reviewsBundle())

	assert.Nil(t, r.Name)
	assert.Nil(t, r.Phone)
	assert.Nil(t, r.Street)
	assert.Nil(t, r.Hours)
	assert.Equal(t, []string{"reviews"}, r.SourcesUsed)
}

func TestMerge_PriceTierIgnoredOutsideReviews(t *testing.T) {
	r := Merge(websiteBundle(), placesBundle())
	assert.Nil(t, r.PriceTier)
	assert.Empty(t, r.SuggestedCategories)
}

func TestMerge_AddressIsOneRecord(t *testing.T) {
	web := &model.SourceFactBundle{Source: model.SourceWebsite, Street: strp("100 Vineyard Dr")}
	r := Merge(web, placesBundle())

	assert.Equal(t, "100 Vineyard Dr", model.Deref(r.Street))
	assert.Nil(t, r.City, "city must not be borrowed from another source's address")
}

func TestMerge_CityOnlyWebsiteKeepsPlacesAddress(t *testing.T) {
	web := &model.SourceFactBundle{Source: model.SourceWebsite, City: strp("Temecula")}
	places := &model.SourceFactBundle{
		Source: model.SourcePlaces,
		Street: strp("123 Main St"),
		City:   strp("Temecula"),
		State:  strp("CA"),
		Zip:    strp("92590"),
	}
	r := Merge(web, places)

	assert.Equal(t, "123 Main St", model.Deref(r.Street))
	assert.Equal(t, "Temecula", model.Deref(r.City))
	assert.Equal(t, "CA", model.Deref(r.State))
	assert.Equal(t, "92590", model.Deref(r.Zip))
	for _, c := range score.Breakdown(&r) {
		if c.Name == "address" {
			assert.Equal(t, score.WeightAddress, c.Points)
		}
	}
}

func TestMerge_LocalityWithoutStreet(t *testing.T) {
	web := &model.SourceFactBundle{Source: model.SourceWebsite, City: strp(" Temecula "), Zip: strp("  ")}
	places := &model.SourceFactBundle{Source: model.SourcePlaces, State: strp("CA"), Zip: strp("92590")}
	r := Merge(web, places)

	assert.Nil(t, r.Street)
	assert.Equal(t, "Temecula", model.Deref(r.City))
	assert.Nil(t, r.State, "locality must come from one source")
	assert.Nil(t, r.Zip)
}

func TestMerge_DropsInvalidRatings(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		count int
	}{
		{"nan", math.NaN(), 50},
		{"positive inf", math.Inf(1), 50},
		{"negative inf", math.Inf(-1), 50},
		{"above five", 5.5, 50},
		{"below zero", -1, 50},
		{"negative count", 4.0, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rev := &model.SourceFactBundle{
				Source: model.SourceReviews,
				Rating: &model.Rating{Source: "yelp", Value: tt.value, Count: tt.count},
			}
			places := &model.SourceFactBundle{
				Source: model.SourcePlaces,
				Rating: &model.Rating{Source: "google", Value: 4.0, Count: 10},
			}
			r := Merge(places, rev)

			require.Len(t, r.Reviews, 1)
			assert.Equal(t, "google", r.Reviews[0].Source)
			assert.Equal(t, 10, r.AggregateReviewCount)

			_, err := json.Marshal(r)
			assert.NoError(t, err)
		})
	}
}

func TestMerge_AggregateCountMatchesReviews(t *testing.T) {
	rev := &model.SourceFactBundle{Source: model.SourceReviews, Rating: &model.Rating{Value: 5, Count: 100}}
	places := &model.SourceFactBundle{Source: model.SourcePlaces, Rating: &model.Rating{Value: 0, Count: 0}}
	r := Merge(places, rev)

	sum := 0
	for _, rv := range r.Reviews {
		sum += rv.ReviewCount
	}
	assert.Equal(t, sum, r.AggregateReviewCount)
}

func TestMerge_BlankValuesDoNotOverride(t *testing.T) {
	web := websiteBundle()
	web.Phone = strp("   ")
	web.Name = strp("")

	r := Merge(web, placesBundle())
	assert.Equal(t, "+1 805-555-9999", model.Deref(r.Phone))
	assert.Equal(t, "Acme Winery & Vineyards", model.Deref(r.Name))
}

func TestMerge_ArgumentOrderIrrelevant(t *testing.T) {
	a := Merge(websiteBundle(), placesBundle(), reviewsBundle())
	b := Merge(reviewsBundle(), placesBundle(), websiteBundle())
	assert.Equal(t, a, b)
}

func TestMerge_Collections(t *testing.T) {
	r := Merge(reviewsBundle(), placesBundle(), websiteBundle())

	var urls []string
	for _, img := range r.Images {
		urls = append(urls, img.URL)
	}
	assert.Equal(t, []string{
		"https://acme.test/hero.jpg?w=1200",
		"https://acme.test/barrels.jpg",
		"https://lh3.googleusercontent.com/p1",
		"https://s3-media.yelp/1.jpg",
	}, urls)

	require.Len(t, r.SocialLinks, 2)
	assert.Equal(t, "https://instagram.com/acme", r.SocialLinks[0].URL, "first-seen wins")
	assert.Equal(t, "yelp", r.SocialLinks[1].Platform)

	require.Len(t, r.Reviews, 2)
	assert.Equal(t, model.ReviewSummary{Source: "google", Rating: 4.0, ReviewCount: 100, URL: "https://maps.google.com/?cid=1"}, r.Reviews[0])
	assert.Equal(t, model.ReviewSummary{Source: "yelp", Rating: 5.0, ReviewCount: 10, URL: "https://www.yelp.com/biz/acme-paso"}, r.Reviews[1])
	require.NotNil(t, r.AggregateRating)
	assert.Equal(t, 4.1, *r.AggregateRating)
	assert.Equal(t, 110, r.AggregateReviewCount)
}

func TestMerge_ImageCap(t *testing.T) {
	web := &model.SourceFactBundle{Source: model.SourceWebsite}
	places := &model.SourceFactBundle{Source: model.SourcePlaces}
	for i := range 15 {
		web.Images = append(web.Images, model.Image{URL: fmt.Sprintf("https://acme.test/w%d.jpg", i)})
		places.Images = append(places.Images, model.Image{URL: fmt.Sprintf("https://g.test/p%d.jpg", i)})
	}

	r := Merge(web, places)
	require.Len(t, r.Images, DefaultImageCap)
	assert.Equal(t, "https://acme.test/w0.jpg", r.Images[0].URL)
	assert.Equal(t, "https://g.test/p4.jpg", r.Images[19].URL)
}

func TestMerge_NilAndEmptyBundles(t *testing.T) {
	r := Merge(nil, &model.SourceFactBundle{Source: model.SourcePlaces}, nil)

	assert.Nil(t, r.Name)
	assert.Empty(t, r.SourcesUsed)
	assert.NotNil(t, r.Images)
	assert.NotNil(t, r.SocialLinks)
	assert.NotNil(t, r.Reviews)
	assert.Nil(t, r.AggregateRating)
}

func TestMerge_SkipsMalformedMembers(t *testing.T) {
	bad := model.PriceTier(9)
	web := &model.SourceFactBundle{
		Source:      model.SourceWebsite,
		Images:      []model.Image{{URL: ""}, {URL: "  "}, {URL: "https://acme.test/a.jpg"}},
		SocialLinks: []model.SocialLink{{Platform: "", URL: "https://x.test"}, {Platform: "facebook", URL: ""}},
		Hours:       &model.Hours{},
	}
	rev := &model.SourceFactBundle{Source: model.SourceReviews, PriceTier: &bad, Categories: []string{" ", ""}}

	assert.NotPanics(t, func() {
		r := Merge(web, rev)
		assert.Len(t, r.Images, 1)
		assert.Empty(t, r.SocialLinks)
		assert.Nil(t, r.Hours)
		assert.Nil(t, r.PriceTier)
	})
}

func TestDedupImages_Idempotent(t *testing.T) {
	in := []model.Image{
		{URL: "https://ACME.test/a.jpg?x=1"},
		{URL: "https://acme.test/a.jpg"},
		{URL: "http://acme.test/a.jpg#frag"},
		{URL: "https://acme.test/b.jpg"},
		{URL: "not a url"},
		{URL: "not a url"},
		{URL: "/img/hero.jpg?w=800"},
		{URL: "/img/hero.jpg?w=1200"},
		{URL: "/img/hero.jpg#top"},
	}
	once := DedupImages(in, 0)
	twice := DedupImages(once, 0)

	assert.Equal(t, once, twice)
	assert.Len(t, once, 4)
	assert.Equal(t, "/img/hero.jpg?w=800", once[3].URL)
	assert.Equal(t, "https://ACME.test/a.jpg?x=1", once[0].URL)
}

func TestDedupSocialLinks_Idempotent(t *testing.T) {
	in := []model.SocialLink{
		{Platform: "Facebook", URL: "https://facebook.com/a"},
		{Platform: "facebook", URL: "https://facebook.com/b"},
		{Platform: "tiktok", URL: "https://tiktok.com/@a"},
	}
	once := DedupSocialLinks(in)
	twice := DedupSocialLinks(once)

	assert.Equal(t, once, twice)
	require.Len(t, once, 2)
	assert.Equal(t, "https://facebook.com/a", once[0].URL)
	assert.Equal(t, "facebook", once[0].Platform)
}
