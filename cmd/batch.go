package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/resilience"
	"github.com/sells-group/directory-enrich/internal/store"
)

var (
	batchFile  string
	batchOut   string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Enrich every business in a YAML or JSON request file",
	Long:  "Reads a list of {businessId, businessName, websiteUrl, city} requests and writes one JSON line per result.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reqs, err := loadRequests(batchFile)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		out := io.Writer(os.Stdout)
		if batchOut != "" {
			f, err := os.Create(batchOut)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		retry := resilience.FromAttempts(cfg.Batch.MaxAttempts, 0)
		retry.OnRetry = resilience.RetryLogger("batch enrich")

		_, err = processBatch(ctx, reqs, batchOptions{
			Limit:       batchLimit,
			Concurrency: cfg.Batch.Concurrency,
			RatePerSec:  cfg.Batch.RatePerSec,
			Retry:       retry,
		}, env.Pipeline, env.Store, out)
		return err
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML or JSON file of enrichment requests (required)")
	batchCmd.Flags().StringVar(&batchOut, "out", "", "write JSON lines here instead of stdout")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of requests to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// loadRequests decodes a request list. Files ending in .json are read as
// JSON; anything else as YAML.
func loadRequests(path string) ([]model.EnrichmentRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "batch: read request file")
	}

	var reqs []model.EnrichmentRequest
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &reqs)
	} else {
		err = yaml.Unmarshal(data, &reqs)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "batch: decode %s", filepath.Base(path))
	}
	return reqs, nil
}

type batchOptions struct {
	Limit       int
	Concurrency int
	RatePerSec  float64
	Retry       resilience.RetryConfig
}

// batchLine is one JSON line of batch output.
type batchLine struct {
	RunID    string                    `json:"runId,omitempty"`
	Request  model.EnrichmentRequest   `json:"request"`
	Response *model.EnrichmentResponse `json:"response,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

type batchSummary struct {
	Complete int64
	Partial  int64
	Failed   int64
}

// errAllTransient marks a response whose every attempted source failed
// transiently. It is retried at the request level.
var errAllTransient = eris.New("batch: every source failed transiently")

// processBatch enriches reqs with bounded concurrency and a shared rate
// limit. A failed request never aborts the batch.
func processBatch(ctx context.Context, reqs []model.EnrichmentRequest, opts batchOptions, p enricher, st store.Store, out io.Writer) (batchSummary, error) {
	var sum batchSummary
	if len(reqs) == 0 {
		zap.L().Info("no requests to process")
		return sum, nil
	}
	if opts.Limit > 0 && len(reqs) > opts.Limit {
		reqs = reqs[:opts.Limit]
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}

	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	limiter := rate.NewLimiter(limit, 1)

	retry := opts.Retry
	retry.ShouldRetry = func(err error) bool { return errors.Is(err, errAllTransient) }

	zap.L().Info("processing batch",
		zap.Int("requests", len(reqs)),
		zap.Int("concurrency", opts.Concurrency),
		zap.Float64("rate_per_sec", opts.RatePerSec),
	)

	var mu sync.Mutex
	enc := json.NewEncoder(out)
	var complete, partial, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, req := range reqs {
		g.Go(func() error {
			log := zap.L().With(zap.String("business_id", req.BusinessID))

			resp, err := enrichWithRetry(gctx, p, limiter, retry, req)
			line := batchLine{Request: req, Response: resp}
			if run := saveRun(gctx, st, req, resp, err); run != nil {
				line.RunID = run.ID
			}

			switch model.StatusFor(resp, err) {
			case model.RunStatusFailed:
				failed.Add(1)
				if err != nil {
					line.Error = err.Error()
				}
				log.Error("enrichment failed", zap.Error(err))
			case model.RunStatusPartial:
				partial.Add(1)
				log.Info("enrichment partial",
					zap.Int("confidence", resp.Result.ConfidenceScore),
					zap.Int("errors", len(resp.Errors)),
				)
			default:
				complete.Add(1)
				log.Info("enrichment complete", zap.Int("confidence", resp.Result.ConfidenceScore))
			}

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(line); err != nil {
				return eris.Wrap(err, "batch: write result")
			}
			return nil
		})
	}

	err := g.Wait()
	sum = batchSummary{Complete: complete.Load(), Partial: partial.Load(), Failed: failed.Load()}
	zap.L().Info("batch complete",
		zap.Int64("complete", sum.Complete),
		zap.Int64("partial", sum.Partial),
		zap.Int64("failed", sum.Failed),
	)
	if err != nil {
		return sum, eris.Wrap(err, "batch processing")
	}
	return sum, nil
}

// enrichWithRetry re-runs a request whose sources all failed transiently.
// When attempts run out the last response is returned as is.
func enrichWithRetry(ctx context.Context, p enricher, limiter *rate.Limiter, retry resilience.RetryConfig, req model.EnrichmentRequest) (*model.EnrichmentResponse, error) {
	var last *model.EnrichmentResponse
	resp, err := resilience.DoVal(ctx, retry, func(ctx context.Context) (*model.EnrichmentResponse, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "batch: rate limit wait")
		}
		resp, err := p.Enrich(ctx, req)
		if err != nil {
			return nil, err
		}
		last = resp
		if resp.AllTransient() {
			return nil, errAllTransient
		}
		return resp, nil
	})
	if errors.Is(err, errAllTransient) {
		return last, nil
	}
	return resp, err
}
