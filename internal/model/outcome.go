package model

import (
	"errors"
	"fmt"
	"time"
)

// Status is the final state of one record.
type Status int

const (
	// StatusOK means the PDF was written.
	StatusOK Status = iota

	// StatusFailed means composing or writing the PDF failed.
	StatusFailed

	// StatusCanceled means the run was interrupted before the record was processed.
	StatusCanceled
)

// String returns the status label used in reports.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// MarshalText makes Status readable in JSON reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrUnknownStatus is returned when a stored status label is not recognised.
var ErrUnknownStatus = errors.New("unknown status")

// UnmarshalText reads a label written by MarshalText, so stored summaries
// can be loaded back.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*s = StatusOK
	case "failed":
		*s = StatusFailed
	case "canceled":
		*s = StatusCanceled
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStatus, text)
	}
	return nil
}

// ErrRecordCanceled marks records skipped because the run was interrupted.
var ErrRecordCanceled = errors.New("record canceled")

// Outcome is the result of processing one record.
//
// Design decision: failures are values, not control flow. The batch driver
// collects one Outcome per record and never stops on a per-record error.
type Outcome struct {
	// Index is the 0-based position of the record in the batch.
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`

	Status Status `json:"status"`

	// Path is the written PDF. Empty unless Status is StatusOK.
	Path string `json:"path,omitempty"`

	// Err is the per-record error; Error is its message for JSON output.
	Err   error  `json:"-"`
	Error string `json:"error,omitempty"`

	// Image is the kind of photo that ended up on the page.
	Image AssetKind `json:"image,omitempty"`

	// ImageReason explains a placeholder.
	ImageReason string `json:"image_reason,omitempty"`

	// BioFontSize is the size the biography was rendered at (0 if skipped).
	BioFontSize float64 `json:"bio_font_size,omitempty"`

	// BioSkipped is set when there was not enough room for any biography.
	BioSkipped bool `json:"bio_skipped,omitempty"`

	// BioOverflow is set when even the smallest size did not fit.
	BioOverflow bool `json:"bio_overflow,omitempty"`

	// SecondarySkipped is set when the secondary-script name could not be drawn.
	SecondarySkipped bool `json:"secondary_skipped,omitempty"`

	// Warnings are human-readable notes about degraded output.
	Warnings []string `json:"warnings,omitempty"`

	// Digest is the SHA3-256 of the written PDF.
	Digest string `json:"digest,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// NewOutcome starts an outcome for the record at index.
func NewOutcome(index int, rec VictimRecord) *Outcome {
	return &Outcome{Index: index, ID: rec.ID, Name: rec.Name}
}

// Fail marks the outcome as failed with err.
func (o *Outcome) Fail(err error) {
	o.Err = err
	o.Error = err.Error()
	if errors.Is(err, ErrRecordCanceled) {
		o.Status = StatusCanceled
		return
	}
	o.Status = StatusFailed
}

// Warn records a degradation that did not prevent the page from being written.
func (o *Outcome) Warn(msg string) {
	o.Warnings = append(o.Warnings, msg)
}

// OK reports whether the record produced a PDF.
func (o *Outcome) OK() bool {
	return o.Status == StatusOK && o.Err == nil
}
