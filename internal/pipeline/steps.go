package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iranrevolution2026/posters/internal/compose"
	"github.com/iranrevolution2026/posters/internal/model"
	"github.com/iranrevolution2026/posters/internal/report"
)

// Resolver finds the photo of a record. asset.Resolver implements it.
type Resolver interface {
	Resolve(ctx context.Context, rec model.VictimRecord, stem string) model.Asset
}

// Composer draws a poster. compose.Composer implements it.
type Composer interface {
	Compose(rec model.VictimRecord, asset model.Asset) (*compose.Page, error)
}

// ResolveStep downloads and normalizes the record's photo.
// It never fails: an unusable photo becomes the placeholder.
type ResolveStep struct {
	resolver Resolver
}

// NewResolveStep creates a ResolveStep.
func NewResolveStep(resolver Resolver) *ResolveStep {
	return &ResolveStep{resolver: resolver}
}

// Name returns the step name.
func (s *ResolveStep) Name() string {
	return "resolve"
}

// Do sets job.Asset.
func (s *ResolveStep) Do(ctx context.Context, job *model.Job) error {
	job.Asset = s.resolver.Resolve(ctx, job.Record, job.Stem)
	return nil
}

// ComposeStep draws the poster and hands it to the sink.
type ComposeStep struct {
	composer Composer
	sink     compose.Sink
	logger   *slog.Logger
}

// ComposeStepOption configures a ComposeStep.
type ComposeStepOption func(*ComposeStep)

// WithComposeLogger sets a custom logger for the compose step.
func WithComposeLogger(logger *slog.Logger) ComposeStepOption {
	return func(s *ComposeStep) {
		s.logger = logger
	}
}

// NewComposeStep creates a ComposeStep.
func NewComposeStep(composer Composer, sink compose.Sink, opts ...ComposeStepOption) *ComposeStep {
	s := &ComposeStep{composer: composer, sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ComposeStep) Name() string {
	return "compose"
}

// Do composes and saves the poster and copies the layout decisions into
// the outcome.
func (s *ComposeStep) Do(_ context.Context, job *model.Job) error {
	page, err := s.composer.Compose(job.Record, job.Asset)
	if err != nil {
		return err
	}

	path, err := s.sink.Save(job.Stem, page)
	if err != nil {
		return fmt.Errorf("save %s: %w", job.Stem, err)
	}

	o := job.Outcome
	o.Path = path
	o.Image = job.Asset.Kind
	if page.Image.Placeholder {
		o.Image = model.AssetUnavailable
		o.ImageReason = job.Asset.Reason
	}
	o.BioSkipped = page.Bio.Skipped
	if !page.Bio.Skipped {
		o.BioFontSize = page.Bio.Fit.Size
		o.BioOverflow = !page.Bio.Fit.Fits
	}
	o.SecondarySkipped = page.SecondarySkipped
	for _, w := range page.Warnings {
		o.Warn(w)
	}

	s.logger.Debug("poster saved", "id", job.Record.ID, "path", path)
	return nil
}

// DigestStep records the SHA3-256 of the written poster for the manifest.
// A digest that cannot be computed is a warning, the poster exists.
type DigestStep struct{}

// NewDigestStep creates a DigestStep.
func NewDigestStep() *DigestStep {
	return &DigestStep{}
}

// Name returns the step name.
func (s *DigestStep) Name() string {
	return "digest"
}

// Do sets job.Outcome.Digest.
func (s *DigestStep) Do(_ context.Context, job *model.Job) error {
	if job.Outcome.Path == "" {
		return nil
	}
	digest, err := report.Digest(job.Outcome.Path)
	if err != nil {
		job.Outcome.Warn(fmt.Sprintf("digest: %v", err))
		return nil
	}
	job.Outcome.Digest = digest
	return nil
}
