// Package source implements the three source adapters the pipeline fans out
// to: the business website, the Google Places directory and Yelp reviews.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/resilience"
)

var (
	// ErrNotConfigured means the adapter has no credentials and was skipped.
	ErrNotConfigured = eris.New("source: not configured")
	// ErrNoMatch means the adapter ran but found nothing for the business.
	ErrNoMatch = eris.New("source: no match")
)

// Adapter queries one external provider and returns the facts it found.
// Implementations must be safe for concurrent use.
type Adapter interface {
	Name() model.SourceName
	Fetch(ctx context.Context, req model.EnrichmentRequest) (*model.SourceFactBundle, error)
}

// SafeFetch calls a.Fetch and turns a panic into an error.
func SafeFetch(ctx context.Context, a Adapter, req model.EnrichmentRequest) (b *model.SourceFactBundle, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = eris.Errorf("source: %s panicked: %v", a.Name(), r)
		}
	}()
	return a.Fetch(ctx, req)
}

// IsSkip reports whether err means the adapter contributed nothing without
// failing.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNoMatch)
}

// Classify maps an adapter failure to an error kind.
func Classify(err error) model.ErrorKind {
	if resilience.IsTransient(err) {
		return model.ErrorKindTransient
	}
	return model.ErrorKindPermanent
}

// StatusError is returned when a plain HTTP fetch gets a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("source: GET %s: status %d", e.URL, e.StatusCode)
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
