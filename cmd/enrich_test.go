package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/directory-enrich/internal/model"
)

func TestRunEnrich_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	err := runEnrich(context.Background(), stubEnricher(), nil,
		model.EnrichmentRequest{BusinessID: "b1", BusinessName: "Acme Winery"}, &buf)
	require.NoError(t, err)

	var resp model.EnrichmentResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "b1", resp.Result.BusinessID)
	require.NotNil(t, resp.Result.Name)
	assert.Equal(t, "Acme Winery", *resp.Result.Name)
	assert.Contains(t, buf.String(), "\n  \"result\"")
}

func TestRunEnrich_WrapsError(t *testing.T) {
	var buf bytes.Buffer
	err := runEnrich(context.Background(), stubEnricher(), nil, model.EnrichmentRequest{BusinessID: "b1"}, &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMissingName))
	assert.Contains(t, err.Error(), "enrich")
	assert.Zero(t, buf.Len())
}

func TestRunEnrich_SavesRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, runEnrich(ctx, stubEnricher(), st, model.EnrichmentRequest{BusinessID: "b1", BusinessName: "Acme"}, &buf))
	require.Error(t, runEnrich(ctx, stubEnricher(), st, model.EnrichmentRequest{BusinessID: "b2"}, &buf))

	runs, err := st.ListRuns(ctx, storeFilterAll())
	require.NoError(t, err)
	require.Len(t, runs, 2)

	statuses := map[string]model.RunStatus{}
	for _, r := range runs {
		statuses[r.Request.BusinessID] = r.Status
	}
	assert.Equal(t, model.RunStatusComplete, statuses["b1"])
	assert.Equal(t, model.RunStatusFailed, statuses["b2"])
}
