package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-enrich/internal/config"
	"github.com/sells-group/directory-enrich/internal/enhance"
	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/pipeline"
	"github.com/sells-group/directory-enrich/internal/source"
	"github.com/sells-group/directory-enrich/internal/store"
	anthropicpkg "github.com/sells-group/directory-enrich/pkg/anthropic"
	"github.com/sells-group/directory-enrich/pkg/firecrawl"
	"github.com/sells-group/directory-enrich/pkg/google"
	"github.com/sells-group/directory-enrich/pkg/yelp"
)

// enricher is the pipeline surface the commands depend on.
type enricher interface {
	Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error)
}

// enrichEnv holds the pipeline and optional run store used by the
// enrich/batch/serve commands.
type enrichEnv struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store // may be nil
}

// Close releases resources held by the environment.
func (e *enrichEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates config for mode, builds clients, adapters and the
// pipeline, and opens the run store when one is configured. Callers should
// defer env.Close().
func initEnv(ctx context.Context, mode string) (*enrichEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	enh, err := buildEnhancer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(buildAdapters(cfg), enh, pipeline.Options{
		Deadline:    cfg.Pipeline.Deadline(),
		DefaultCity: cfg.Pipeline.DefaultCity,
		ImageCap:    cfg.Pipeline.ImageCap,
	})

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	return &enrichEnv{Pipeline: p, Store: st}, nil
}

// initStore opens and migrates the configured run store. It returns nil
// when run history is disabled.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if st == nil {
		return nil, nil
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildAdapters creates the three source adapters. A missing API key leaves
// the matching client nil so the adapter reports itself not configured.
func buildAdapters(c *config.Config) []source.Adapter {
	var fc firecrawl.Client
	if c.Firecrawl.Key != "" {
		fc = firecrawl.NewClient(c.Firecrawl.Key, firecrawl.WithBaseURL(c.Firecrawl.BaseURL))
	} else {
		zap.L().Debug("ENRICH_FIRECRAWL_KEY not set, website extractor will read page HTML")
	}

	var gc google.Client
	if c.Google.Key != "" {
		gc = google.NewClient(c.Google.Key, google.WithBaseURL(c.Google.BaseURL))
	} else {
		zap.L().Debug("ENRICH_GOOGLE_KEY not set, places source disabled")
	}

	var yc yelp.Client
	if c.Yelp.Key != "" {
		yc = yelp.NewClient(c.Yelp.Key, yelp.WithBaseURL(c.Yelp.BaseURL))
	} else {
		zap.L().Debug("ENRICH_YELP_KEY not set, reviews source disabled")
	}

	return []source.Adapter{
		source.NewWebsite(fc, nil, source.WebsiteOptions{
			Timeout:   seconds(c.Sources.Website.TimeoutSecs),
			MaxImages: c.Sources.Website.MaxImages,
		}),
		source.NewPlaces(gc, source.PlacesOptions{
			Timeout:       seconds(c.Sources.Places.TimeoutSecs),
			MaxPhotos:     c.Sources.Places.MaxPhotos,
			PhotoMaxWidth: c.Sources.Places.PhotoMaxWidth,
		}),
		source.NewReviews(yc, source.ReviewsOptions{
			Timeout:   seconds(c.Sources.Reviews.TimeoutSecs),
			MaxPhotos: c.Sources.Reviews.MaxPhotos,
		}),
	}
}

// buildEnhancer selects the copy generator. It returns nil, nil when the
// provider is disabled or has no key; results then carry no SEO copy.
func buildEnhancer(ctx context.Context, c *config.Config) (enhance.Enhancer, error) {
	timeout := seconds(c.Enhance.TimeoutSecs)

	switch c.Enhance.Provider {
	case "none":
		return nil, nil
	case "gemini":
		if c.Gemini.Key == "" {
			zap.L().Warn("ENRICH_GEMINI_KEY not set, copy generation disabled")
			return nil, nil
		}
		gen, err := enhance.NewGeminiGenerator(ctx, enhance.GeminiConfig{
			APIKey:  c.Gemini.Key,
			Model:   c.Gemini.Model,
			BaseURL: c.Gemini.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return enhance.New(gen, timeout), nil
	default:
		if c.Anthropic.Key == "" {
			zap.L().Warn("ENRICH_ANTHROPIC_KEY not set, copy generation disabled")
			return nil, nil
		}
		gen := enhance.NewAnthropicGenerator(anthropicpkg.NewClient(c.Anthropic.Key), c.Anthropic.Model, c.Enhance.MaxTokens)
		return enhance.New(gen, timeout), nil
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// saveRun records a run when a store is configured. Failures are logged and
// never change the outcome returned to the caller.
func saveRun(ctx context.Context, st store.Store, req model.EnrichmentRequest, resp *model.EnrichmentResponse, runErr error) *model.Run {
	if st == nil {
		return nil
	}
	run, err := st.SaveRun(ctx, req, resp, runErr)
	if err != nil {
		zap.L().Warn("failed to save run", zap.String("business_id", req.BusinessID), zap.Error(err))
		return nil
	}
	return run
}
