package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iranrevolution2026/posters/internal/model"
)

// DefaultConcurrency is the number of photos resolved at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor runs a batch of records through the resolve and render
// pipelines.
type BatchProcessor struct {
	resolve     *Pipeline
	render      *Pipeline
	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of photos resolved at once.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. resolve runs concurrently,
// render runs sequentially in input order.
func NewBatchProcessor(resolve, render *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		resolve:     resolve,
		render:      render,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Run processes records and calls callback once per record, in input
// order, from the calling goroutine. It returns the outcomes in the same
// order.
//
// Design decision: errgroup.SetLimit bounds the prefetch. The launcher runs
// in its own goroutine because g.Go blocks at the limit, and the render
// loop waits on a per-record channel so it can start on the first record
// while later photos are still downloading.
//
// After ctx is canceled no new record is started; the remaining records are
// reported as canceled and ctx's error is returned.
func (bp *BatchProcessor) Run(ctx context.Context, records []model.VictimRecord, callback func(*model.Outcome)) ([]model.Outcome, error) {
	bp.logger.Info("starting batch", "records", len(records), "concurrency", bp.concurrency)
	start := time.Now()

	jobs := make([]*model.Job, len(records))
	ready := make([]chan struct{}, len(records))
	stems := make(model.StemSet, len(records))
	for i, rec := range records {
		jobs[i] = model.NewJob(i, rec)
		// Unique stems keep concurrent photo downloads and the written
		// posters of two records apart.
		stem, holder := stems.Claim(rec.ID, i)
		jobs[i].Stem = stem
		if holder >= 0 && jobs[i].Outcome.Err == nil {
			jobs[i].Outcome.Warn(fmt.Sprintf("file name taken by record %d; writing %s.pdf", holder+1, stem))
		}
		ready[i] = make(chan struct{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)
	launched := make(chan struct{})
	go func() {
		defer close(launched)
		for i, job := range jobs {
			if gctx.Err() != nil {
				for _, ch := range ready[i:] {
					close(ch)
				}
				return
			}
			if job.Outcome.Err != nil {
				close(ready[i])
				continue
			}
			g.Go(func() error {
				defer close(ready[i])
				// Resolution records everything in the job; its
				// error never cancels the rest of the batch.
				_ = bp.resolve.Execute(gctx, job) //nolint:errcheck // recorded in the outcome
				return nil
			})
		}
	}()

	outcomes := make([]model.Outcome, 0, len(jobs))
	for i, job := range jobs {
		began := time.Now()
		// Resolution honours ctx, so this returns promptly after a cancel.
		<-ready[i]

		switch {
		case ctx.Err() != nil:
			if job.Outcome.Err == nil {
				job.Outcome.Fail(model.ErrRecordCanceled)
			}
		case job.Outcome.Err == nil:
			_ = bp.render.Execute(ctx, job) //nolint:errcheck // recorded in the outcome
		}
		job.Outcome.Duration = time.Since(began)

		if callback != nil {
			callback(job.Outcome)
		}
		outcomes = append(outcomes, *job.Outcome)
	}

	<-launched
	_ = g.Wait() //nolint:errcheck // goroutines always return nil

	bp.logger.Info("batch complete", "records", len(records), "elapsed", time.Since(start))
	return outcomes, ctx.Err()
}
