package source

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/directory-enrich/internal/hours"
	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/pkg/google"
)

// PlacesOptions configures the places adapter.
type PlacesOptions struct {
	Timeout       time.Duration
	MaxPhotos     int
	PhotoMaxWidth int
}

// Places looks the business up in Google Places.
type Places struct {
	client google.Client
	opts   PlacesOptions
}

// NewPlaces creates the places adapter. A nil client makes every Fetch
// return ErrNotConfigured.
func NewPlaces(client google.Client, opts PlacesOptions) *Places {
	if opts.MaxPhotos <= 0 {
		opts.MaxPhotos = 5
	}
	if opts.PhotoMaxWidth <= 0 {
		opts.PhotoMaxWidth = 1200
	}
	return &Places{client: client, opts: opts}
}

// Name implements Adapter.
func (p *Places) Name() model.SourceName { return model.SourcePlaces }

// Fetch implements Adapter.
func (p *Places) Fetch(ctx context.Context, req model.EnrichmentRequest) (*model.SourceFactBundle, error) {
	if p.client == nil {
		return nil, ErrNotConfigured
	}
	ctx, cancel := withTimeout(ctx, p.opts.Timeout)
	defer cancel()

	resp, err := p.client.TextSearch(ctx, req.Query())
	if err != nil {
		return nil, eris.Wrap(err, "places: search")
	}
	if len(resp.Places) == 0 {
		return nil, ErrNoMatch
	}
	place := resp.Places[0]

	b := &model.SourceFactBundle{
		Source: model.SourcePlaces,
		Name:   model.Str(place.DisplayName.Text),
		Phone:  model.Str(place.NationalPhoneNumber),
		MapURL: model.Str(place.GoogleMapsURI),
	}
	if b.Phone == nil {
		b.Phone = model.Str(place.InternationalPhoneNumber)
	}
	setAddress(b, place)
	if place.RegularOpeningHours != nil {
		b.Hours = hours.ParseWeekdayDescriptions(place.RegularOpeningHours.WeekdayDescriptions)
	}
	if place.UserRatingCount > 0 {
		b.Rating = &model.Rating{Source: "google", Value: place.Rating, Count: place.UserRatingCount}
	}
	b.Images = p.resolvePhotos(ctx, place.Photos)
	return b, nil
}

// resolvePhotos turns photo resource names into fetchable URLs. A photo whose
// media lookup fails keeps its reference URL.
func (p *Places) resolvePhotos(ctx context.Context, photos []google.Photo) []model.Image {
	if len(photos) > p.opts.MaxPhotos {
		photos = photos[:p.opts.MaxPhotos]
	}
	urls := make([]string, len(photos))

	g, gctx := errgroup.WithContext(ctx)
	for i, ph := range photos {
		g.Go(func() error {
			media, err := p.client.PhotoMedia(gctx, ph.Name, p.opts.PhotoMaxWidth)
			if err != nil || media.PhotoURI == "" {
				zap.L().Debug("places: photo fallback to reference url",
					zap.String("photo", ph.Name), zap.Error(err))
				urls[i] = p.client.PhotoReferenceURL(ph.Name, p.opts.PhotoMaxWidth)
				return nil
			}
			urls[i] = media.PhotoURI
			return nil
		})
	}
	_ = g.Wait()

	var out []model.Image
	for _, u := range urls {
		if u != "" {
			out = append(out, model.Image{URL: u, Source: "google"})
		}
	}
	return out
}

func setAddress(b *model.SourceFactBundle, place google.Place) {
	var number, route string
	for _, c := range place.AddressComponents {
		switch {
		case slices.Contains(c.Types, "street_number"):
			number = c.LongText
		case slices.Contains(c.Types, "route"):
			route = c.ShortText
		case slices.Contains(c.Types, "locality"):
			b.City = model.Str(c.LongText)
		case slices.Contains(c.Types, "postal_town") && b.City == nil:
			b.City = model.Str(c.LongText)
		case slices.Contains(c.Types, "administrative_area_level_1"):
			b.State = model.Str(c.ShortText)
		case slices.Contains(c.Types, "postal_code"):
			b.Zip = model.Str(c.LongText)
		}
	}
	b.Street = model.Str(strings.TrimSpace(number + " " + route))

	// Formatted address as a last resort: "123 Main St, Springfield, IL 62701, USA".
	if b.Street == nil && place.FormattedAddress != "" {
		b.Street = model.Str(strings.Split(place.FormattedAddress, ",")[0])
	}
}
