package source

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/pkg/yelp"
)

// ReviewsOptions configures the reviews adapter.
type ReviewsOptions struct {
	Timeout   time.Duration
	MaxPhotos int
}

// Reviews reads rating, price and categories from Yelp. It never reports
// identity or contact facts.
type Reviews struct {
	client yelp.Client
	opts   ReviewsOptions
}

// NewReviews creates the reviews adapter. A nil client makes every Fetch
// return ErrNotConfigured.
func NewReviews(client yelp.Client, opts ReviewsOptions) *Reviews {
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = 3
	}
	return &Reviews{client: client, opts: opts}
}

// Name implements Adapter.
func (r *Reviews) Name() model.SourceName { return model.SourceReviews }

// Fetch implements Adapter.
func (r *Reviews) Fetch(ctx context.Context, req model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	if r.client == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := withTimeout(ctx, r.opts.Timeout)
	defer cancel()

	location := req.City
	if location == "" {
		// Yelp requires a location; the name alone rarely resolves.
		return nil, ErrNoMatch
	}
	found, err := r.client.Search(ctx, req.BusinessName, location, 1)
	if err != nil {
		return nil, eris.Wrap(err, "reviews: search")
	}
	if len(found.Businesses) == 0 {
		return nil, ErrNoMatch
	}

	biz, err := r.client.Business(ctx, found.Businesses[0].ID)
	if err != nil {
		return nil, eris.Wrap(err, "reviews: details")
	}

	b := &model.SourceFactBundle{
		Source:     model.SourceReviews,
		ProfileURL: model.Str(biz.URL),
	}
	if biz.ReviewCount > 0 {
		b.Rating = &model.Rating{Source: "yelp", Value: biz.Rating, Count: biz.ReviewCount}
	}
	if tier, ok := model.ParsePriceTier(biz.Price); ok {
		b.PriceTier = &tier
	}
	photos := biz.Photos
	if len(photos) == 0 && biz.ImageURL != "" {
		photos = []string{biz.ImageURL}
	}
	for i, u := range photos {
		if i == r.opts.MaxPhotos {
			break
		}
		if u != "" {
			b.Images = append(b.Images, model.Image{URL: u, Source: "yelp"})
		}
	}
	var cats []string
	for _, c := range biz.Categories {
		cats = append(cats, c.Title)
	}
	b.Categories = model.CleanList(cats)
	return b, nil
}
