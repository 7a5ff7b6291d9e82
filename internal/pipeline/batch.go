package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/cubegrab/internal/acquire"
	"github.com/nao1215/cubegrab/internal/model"
)

// Processor processes one conversion. *acquire.Coordinator implements it.
type Processor interface {
	Process(ctx context.Context, conv *model.Conversion) (*acquire.Result, error)
}

// BatchProcessor processes many conversions concurrently.
type BatchProcessor struct {
	processor   Processor
	pipeline    *Pipeline
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

// WithConcurrency sets the maximum number of concurrent conversions.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithPipeline runs p on every result as soon as its conversion finishes.
func WithPipeline(p *Pipeline) BatchOption {
	return func(b *BatchProcessor) {
		b.pipeline = p
	}
}

// NewBatchProcessor creates a BatchProcessor. The default concurrency is 4.
func NewBatchProcessor(processor Processor, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		processor:   processor,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// Outcome is the result of one conversion in a batch.
type Outcome struct {
	Result *acquire.Result
	// Err is the processing error; nil means success.
	Err error
	// StepErr is the error of the output pipeline, if any.
	StepErr error
}

// ProcessBatch processes convs and returns their outcomes in input order.
// A failed conversion does not stop the others; the returned error is only
// set when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, convs []*model.Conversion) ([]Outcome, error) {
	outcomes := make([]Outcome, len(convs))
	err := bp.ProcessBatchWithCallback(ctx, convs, func(o Outcome, index int) {
		outcomes[index] = o
	})
	return outcomes, err
}

// ProcessBatchWithCallback processes convs and calls callback for each
// finished conversion. The callback runs on the worker goroutine, each
// index is reported exactly once.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	convs []*model.Conversion,
	callback func(o Outcome, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total", len(convs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	// Not errgroup.WithContext: one failed conversion must not cancel the rest.
	var g errgroup.Group
	g.SetLimit(bp.concurrency)

	for i, conv := range convs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				callback(Outcome{Result: skipped(conv, err), Err: err}, i)
				return nil
			}

			bp.logger.Info("processing conversion", "url", conv.URL, "index", i+1, "total", len(convs))

			res, err := bp.processor.Process(ctx, conv)
			if res == nil {
				res = skipped(conv, err)
			}
			o := Outcome{Result: res, Err: err}
			if bp.pipeline != nil {
				o.StepErr = bp.pipeline.Execute(ctx, res)
			}
			if err != nil {
				bp.logger.Warn("conversion failed", "url", conv.URL, "error", err)
			}
			callback(o, i)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	bp.logger.Info("batch processing complete",
		"total", len(convs),
		"elapsed", time.Since(startTime),
	)
	return ctx.Err()
}

// skipped builds the result of a conversion that never ran.
func skipped(conv *model.Conversion, err error) *acquire.Result {
	r := &model.AcquisitionReport{ConversionID: conv.ID, URL: conv.URL, StartedAt: time.Now().UTC()}
	if err != nil {
		r.Error = err.Error()
	}
	return &acquire.Result{Report: r}
}
