package model

import "time"

// RunStatus represents the outcome of a stored enrichment run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusPartial  RunStatus = "partial"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted pipeline invocation, kept by the caller for audit.
type Run struct {
	ID              string              `json:"id"`
	Request         EnrichmentRequest   `json:"request"`
	Status          RunStatus           `json:"status"`
	ConfidenceScore int                 `json:"confidence_score"`
	Response        *EnrichmentResponse `json:"response,omitempty"`
	Error           string              `json:"error,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// StatusFor derives a run status from a pipeline response.
func StatusFor(resp *EnrichmentResponse, err error) RunStatus {
	switch {
	case err != nil || resp == nil:
		return RunStatusFailed
	case len(resp.Errors) > 0:
		return RunStatusPartial
	default:
		return RunStatusComplete
	}
}
