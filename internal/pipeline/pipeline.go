package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/cubegrab/internal/acquire"
)

// Step handles one processed conversion.
type Step interface {
	// Do handles the result. Failed conversions are passed too; a step
	// decides itself whether it has anything to do with them.
	Do(ctx context.Context, res *acquire.Result) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order on each result.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after one fails. The
// errors are joined and returned at the end.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps on res. Cancellation is checked between steps.
func (p *Pipeline) Execute(ctx context.Context, res *acquire.Result) error {
	var errs []error
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return errors.Join(append(errs, err)...)
		}

		if err := step.Do(ctx, res); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", res.Report.URL,
				"error", err,
			)
			if !p.continueOnError {
				return err
			}
			errs = append(errs, err)
			continue
		}
		p.logger.Debug("step completed", "step", step.Name(), "url", res.Report.URL)
	}
	return errors.Join(errs...)
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
