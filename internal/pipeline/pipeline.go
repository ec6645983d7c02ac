// Package pipeline fans a business out to the source adapters, merges what
// they return, generates copy and scores the result.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/directory-enrich/internal/enhance"
	"github.com/sells-group/directory-enrich/internal/model"
	"github.com/sells-group/directory-enrich/internal/score"
	"github.com/sells-group/directory-enrich/internal/source"
)

// DefaultDeadline bounds one Enrich call.
const DefaultDeadline = 20 * time.Second

// EnhancerSource is the source name recorded for copy generation failures.
const EnhancerSource = model.EnhancerSource

// Options tunes a Pipeline. Zero values take the defaults.
type Options struct {
	Deadline    time.Duration
	DefaultCity string
	ImageCap    int
	Now         func() time.Time
}

// Pipeline runs enrichment requests. It holds no per-request state and is
// safe for concurrent use.
type Pipeline struct {
	adapters []source.Adapter
	enhancer enhance.Enhancer
	opts     Options
}

// New creates a Pipeline. enhancer may be nil, in which case results carry
// no SEO copy.
func New(adapters []source.Adapter, enhancer enhance.Enhancer, opts Options) *Pipeline {
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	if opts.ImageCap <= 0 {
		opts.ImageCap = DefaultImageCap
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{adapters: adapters, enhancer: enhancer, opts: opts}
}

type outcome struct {
	bundle  *model.SourceFactBundle
	err     error
	elapsed time.Duration
}

// Enrich gathers, merges and scores facts for one business. The only error
// is request validation; source and copy failures are reported in the
// response.
func (p *Pipeline) Enrich(ctx context.Context, req model.EnrichmentRequest) (*model.EnrichmentResponse, error) {
	req, err := req.Normalize(p.opts.DefaultCity)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := zap.L().With(zap.String("business_id", req.BusinessID), zap.String("business", req.BusinessName))

	fanCtx, cancel := context.WithTimeout(ctx, p.opts.Deadline)
	defer cancel()

	resp := &model.EnrichmentResponse{Errors: []model.SourceError{}}
	var bundles []*model.SourceFactBundle

	for i, o := range p.fanOut(fanCtx, req) {
		name := string(p.adapters[i].Name())
		switch {
		case o == nil:
			log.Warn("pipeline: source abandoned at deadline", zap.String("source", name))
			resp.Errors = append(resp.Errors, model.SourceError{
				Source:  name,
				Message: context.DeadlineExceeded.Error(),
				Kind:    model.ErrorKindTransient,
			})
		case o.err != nil && source.IsSkip(o.err):
			log.Debug("pipeline: source skipped", zap.String("source", name), zap.Error(o.err))
		case o.err != nil:
			kind := source.Classify(o.err)
			log.Warn("pipeline: source failed",
				zap.String("source", name),
				zap.String("kind", string(kind)),
				zap.Duration("elapsed", o.elapsed),
				zap.Error(o.err),
			)
			resp.Errors = append(resp.Errors, model.SourceError{Source: name, Message: o.err.Error(), Kind: kind})
		case o.bundle.IsEmpty():
			log.Debug("pipeline: source found nothing", zap.String("source", name))
		default:
			b := *o.bundle
			b.Source = p.adapters[i].Name()
			bundles = append(bundles, &b)
		}
	}

	resp.Result = mergeWithCap(p.opts.ImageCap, bundles...)
	resp.Result.BusinessID = req.BusinessID

	if p.enhancer != nil {
		in := enhance.InputFromResult(&resp.Result)
		if in.Name == "" {
			in.Name = req.BusinessName
		}
		if in.City == "" {
			in.City = req.City
		}
		// Copy generation runs on its own timeout under the caller's context,
		// not the source deadline the fan-out may already have used up.
		seo, err := p.enhancer.Enhance(ctx, in)
		if err != nil {
			kind := source.Classify(err)
			log.Warn("pipeline: copy generation failed", zap.String("kind", string(kind)), zap.Error(err))
			resp.Errors = append(resp.Errors, model.SourceError{
				Source:  EnhancerSource,
				Message: err.Error(),
				Kind:    kind,
			})
		} else {
			resp.Result.SEO = seo
		}
	}

	resp.Result.ConfidenceScore = score.Compute(&resp.Result)
	resp.Result.EnrichedAt = p.opts.Now().UTC()

	log.Info("pipeline: enrichment complete",
		zap.Strings("sources_used", resp.Result.SourcesUsed),
		zap.Int("errors", len(resp.Errors)),
		zap.Int("confidence", resp.Result.ConfidenceScore),
		zap.Duration("duration", time.Since(start)),
	)
	return resp, nil
}

// fanOut runs every adapter concurrently. Each branch owns one slot; the
// returned slice holds nil for branches still running when ctx ended.
func (p *Pipeline) fanOut(ctx context.Context, req model.EnrichmentRequest) []*outcome {
	slots := make([]outcome, len(p.adapters))
	done := make([]chan struct{}, len(p.adapters))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range p.adapters {
		done[i] = make(chan struct{})
		g.Go(func() error {
			defer close(done[i])
			t0 := time.Now()
			b, err := source.SafeFetch(gctx, a, req)
			slots[i] = outcome{bundle: b, err: err, elapsed: time.Since(t0)}
			return nil
		})
	}

	all := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(all)
	}()
	select {
	case <-all:
	case <-ctx.Done():
	}

	out := make([]*outcome, len(p.adapters))
	for i := range slots {
		select {
		case <-done[i]:
			out[i] = &slots[i]
		default:
		}
	}
	return out
}
