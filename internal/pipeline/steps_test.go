package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iranrevolution2026/posters/internal/compose"
	"github.com/iranrevolution2026/posters/internal/layout"
	"github.com/iranrevolution2026/posters/internal/model"
)

type stubResolver struct {
	asset model.Asset
	stems []string
}

func (r *stubResolver) Resolve(_ context.Context, _ model.VictimRecord, stem string) model.Asset {
	r.stems = append(r.stems, stem)
	return r.asset
}

type failingComposer struct{}

func (failingComposer) Compose(model.VictimRecord, model.Asset) (*compose.Page, error) {
	return nil, errors.New("render failed")
}

type failingSink struct{}

func (failingSink) Save(string, *compose.Page) (string, error) {
	return "", os.ErrPermission
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestComposer() *compose.Composer {
	return compose.New(
		compose.Settings{Template: layout.Bilingual(), BaseURL: "https://iranrevolution.online"},
		compose.WithLogger(quietLogger()),
	)
}

func fullJob() *model.Job {
	return model.NewJob(0, model.VictimRecord{
		ID: "v1", Name: "Jane Doe", City: "Tehran", Date: "2026-01-16", Bio: "short bio",
	})
}

func TestResolveStep(t *testing.T) {
	t.Parallel()

	r := &stubResolver{asset: model.Unavailable("no photo link")}
	job := fullJob()
	step := NewResolveStep(r)

	if step.Name() != "resolve" {
		t.Errorf("expected name resolve, got %q", step.Name())
	}
	if err := step.Do(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Asset.Reason != "no photo link" {
		t.Errorf("expected the resolved asset on the job, got %+v", job.Asset)
	}
	if len(r.stems) != 1 || r.stems[0] != "v1" {
		t.Errorf("expected stem v1, got %v", r.stems)
	}
}

func TestComposeStep(t *testing.T) {
	t.Parallel()

	t.Run("saves the poster and fills the outcome", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		job := fullJob()
		job.Asset = model.Unavailable("no photo link")

		step := NewComposeStep(newTestComposer(), compose.NewFileSink(dir), WithComposeLogger(quietLogger()))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		o := job.Outcome
		if o.Path != filepath.Join(dir, "v1.pdf") {
			t.Errorf("expected v1.pdf, got %q", o.Path)
		}
		if _, err := os.Stat(o.Path); err != nil {
			t.Errorf("expected the poster on disk: %v", err)
		}
		if o.Image != model.AssetUnavailable || o.ImageReason != "no photo link" {
			t.Errorf("expected placeholder with reason, got %v %q", o.Image, o.ImageReason)
		}
		if o.BioFontSize != 16 || o.BioSkipped || o.BioOverflow {
			t.Errorf("expected the bio at 16pt, got %+v", o)
		}
		if len(o.Warnings) == 0 || !strings.Contains(o.Warnings[0], "no photo link") {
			t.Errorf("expected the placeholder warning, got %v", o.Warnings)
		}

		if err := NewDigestStep().Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(o.Digest) != 64 {
			t.Errorf("expected a hex SHA3-256 digest, got %q", o.Digest)
		}
	})

	t.Run("composer error fails the record", func(t *testing.T) {
		t.Parallel()

		step := NewComposeStep(failingComposer{}, compose.NewFileSink(t.TempDir()))
		if err := step.Do(context.Background(), fullJob()); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("sink error fails the record", func(t *testing.T) {
		t.Parallel()

		step := NewComposeStep(newTestComposer(), failingSink{}, WithComposeLogger(quietLogger()))
		err := step.Do(context.Background(), fullJob())
		if !errors.Is(err, os.ErrPermission) {
			t.Errorf("expected ErrPermission, got %v", err)
		}
	})
}

func TestDigestStep(t *testing.T) {
	t.Parallel()

	t.Run("nothing written", func(t *testing.T) {
		t.Parallel()

		job := fullJob()
		if err := NewDigestStep().Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Outcome.Digest != "" {
			t.Error("expected no digest")
		}
	})

	t.Run("missing file is a warning", func(t *testing.T) {
		t.Parallel()

		job := fullJob()
		job.Outcome.Path = filepath.Join(t.TempDir(), "gone.pdf")
		if err := NewDigestStep().Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(job.Outcome.Warnings) != 1 {
			t.Errorf("expected one warning, got %v", job.Outcome.Warnings)
		}
	})
}
