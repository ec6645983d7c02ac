package pipeline

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/directory-enrich/internal/enhance"
	"github.com/sells-group/directory-enrich/internal/model"
)

// --- Adapter Mock ---

type mockAdapter struct {
	mock.Mock
	name model.SourceName
}

func newMockAdapter(name model.SourceName) *mockAdapter {
	return &mockAdapter{name: name}
}

func (m *mockAdapter) Name() model.SourceName { return m.name }

func (m *mockAdapter) Fetch(ctx context.Context, req model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SourceFactBundle), args.Error(1)
}

// --- Enhancer Mock ---

type mockEnhancer struct {
	mock.Mock
}

func (m *mockEnhancer) Enhance(ctx context.Context, in enhance.Input) (*model.SEOCopy, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SEOCopy), args.Error(1)
}

// slowAdapter blocks until its delay passes, ignoring cancellation when
// stubborn is set.
type slowAdapter struct {
	name     model.SourceName
	delay    time.Duration
	stubborn bool
	bundle   *model.SourceFactBundle
}

func (s *slowAdapter) Name() model.SourceName { return s.name }

func (s *slowAdapter) Fetch(ctx context.Context, _ model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	if s.stubborn {
		time.Sleep(s.delay)
		return s.bundle, nil
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(s.delay):
		return s.bundle, nil
	}
}

type panicAdapter struct{ name model.SourceName }

func (p *panicAdapter) Name() model.SourceName { return p.name }

func (p *panicAdapter) Fetch(context.Context, model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	panic("unexpected adapter payload")
}

func strp(s string) *string { return &s }

func websiteBundle() *model.SourceFactBundle {
	return &model.SourceFactBundle{
		Source:      model.SourceWebsite,
		Name:        strp("Acme Winery"),
		Description: strp("Family-owned winery in the hills west of Paso Robles pouring estate Zinfandel and Rhône blends since 1987."),
		Phone:       strp("(805) 555-0100"),
		Street:      strp("100 Vineyard Dr"),
		City:        strp("Paso Robles"),
		State:       strp("CA"),
		Images: []model.Image{
			{URL: "https://acme.test/hero.jpg?w=1200", Source: "website"},
			{URL: "https://acme.test/barrels.jpg", Source: "website"},
		},
		SocialLinks: []model.SocialLink{{Platform: "instagram", URL: "https://instagram.com/acme", Handle: "acme"}},
		Services:    []string{"Tastings", "Tours"},
	}
}

func placesBundle() *model.SourceFactBundle {
	tier := model.PriceLuxury
	return &model.SourceFactBundle{
		Source: model.SourcePlaces,
		Name:   strp("Acme Winery & Vineyards"),
		Phone:  strp("+1 805-555-9999"),
		Street: strp("1 Other Rd"),
		City:   strp("Templeton"),
		MapURL: strp("https://maps.google.com/?cid=1"),
		Hours: &model.Hours{
			model.Monday: {Open: "10:00", Close: "17:00"},
			model.Sunday: {Closed: true},
		},
		Rating:    &model.Rating{Source: "google", Value: 4.0, Count: 100},
		PriceTier: &tier,
		Images: []model.Image{
			{URL: "https://acme.test/hero.jpg?w=400", Source: "google"},
			{URL: "https://lh3.googleusercontent.com/p1", Source: "google"},
		},
		Categories: []string{"Should be ignored"},
	}
}

func reviewsBundle() *model.SourceFactBundle {
	tier := model.PriceModerate
	return &model.SourceFactBundle{
		Source:     model.SourceReviews,
		Name:       strp("ACME WINERY (yelp)"),
		Phone:      strp("+18055550000"),
		ProfileURL: strp("https://www.yelp.com/biz/acme-paso"),
		Rating:     &model.Rating{Source: "yelp", Value: 5.0, Count: 10},
		PriceTier:  &tier,
		Categories: []string{"Wineries", "Venues & Event Spaces"},
		Images:     []model.Image{{URL: "https://s3-media.yelp/1.jpg", Source: "yelp"}},
		SocialLinks: []model.SocialLink{
			{Platform: "yelp", URL: "https://www.yelp.com/biz/acme-paso"},
			{Platform: "instagram", URL: "https://instagram.com/someone-else"},
		},
	}
}
