package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/store"
)

// enrichFunc adapts a function to the enricher interface.
type enrichFunc func(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error)

func (f enrichFunc) Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error) {
	return f(ctx, req)
}

// stubEnricher validates like the pipeline and returns a fixed-shape result.
func stubEnricher(errs ...model.SourceError) enricher {
	return enrichFunc(func(_ context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error) {
		req, err := req.Normalize("")
		if err != nil {
			return nil, err
		}
		return &model.EnrichmentResponse{
			Result: model.MergedEnrichmentResult{
				BusinessID:      req.BusinessID,
				Name:            model.Str(req.BusinessName),
				Images:          []model.Image{},
				SocialLinks:     []model.SocialLink{},
				Reviews:         []model.ReviewSummary{},
				SourcesUsed:     []string{"website"},
				ConfidenceScore: 10,
				EnrichedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			Errors: append([]model.SourceError{}, errs...),
		}, nil
	})
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func storeFilterAll() store.RunFilter { return store.RunFilter{} }
