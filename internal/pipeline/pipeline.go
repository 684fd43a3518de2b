package pipeline

import (
	"context"
	"log/slog"

	"github.com/iranrevolution2026/posters/internal/model"
)

// Step is one stage of processing a record.
//
// Design decision: steps are an interface rather than function types so
// that they can carry their dependencies (resolver, composer, sink) and
// report a Name for logging.
type Step interface {
	// Do runs the step. Degraded results are recorded in the job's outcome
	// and nil is returned; an error means the record failed.
	Do(ctx context.Context, job *model.Job) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline running steps.
func New(steps []Step, opts ...Option) *Pipeline {
	p := &Pipeline{steps: steps}
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

// Execute runs every step on job and stops at the first error, which is
// also recorded in job.Outcome.
//
// Cancellation is checked before each step; a step already running handles
// its own deadline.
func (p *Pipeline) Execute(ctx context.Context, job *model.Job) error {
	for _, step := range p.steps {
		if ctx.Err() != nil {
			p.logger.Debug("pipeline canceled", "step", step.Name(), "id", job.Record.ID)
			job.Outcome.Fail(model.ErrRecordCanceled)
			return model.ErrRecordCanceled
		}

		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"id", job.Record.ID,
				"error", err,
			)
			job.Outcome.Fail(err)
			return err
		}

		p.logger.Debug("step completed", "step", step.Name(), "id", job.Record.ID)
		job.Steps = append(job.Steps, step.Name())
	}
	return nil
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
