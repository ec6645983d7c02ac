// Package store persists enrichment run history for the CLI and HTTP API.
// The pipeline never reads from it.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	BusinessID string          `json:"business_id,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// DefaultListLimit caps ListRuns when the filter carries no limit.
const DefaultListLimit = 100

// Store defines the persistence interface for run history.
type Store interface {
	// SaveRun records one finished invocation. runErr is the validation
	// error Enrich returned, if any.
	SaveRun(ctx context.Context, req model.EnrichmentRequest, resp *model.EnrichmentResponse, runErr error) (*model.Run, error)
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store named by driver. It returns nil, nil for an empty
// driver so callers can treat run history as optional.
func New(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, dsn, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// newRun builds the record SaveRun persists.
func newRun(id string, req model.EnrichmentRequest, resp *model.EnrichmentResponse, runErr error) *model.Run {
	r := &model.Run{
		ID:       id,
		Request:  req,
		Status:   model.StatusFor(resp, runErr),
		Response: resp,
	}
	if resp != nil {
		r.ConfidenceScore = resp.Result.ConfidenceScore
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	return r
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	return n
}
