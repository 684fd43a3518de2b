package model

import (
	"time"

	"github.com/samber/lo"
)

// Summary aggregates the outcomes of a batch run.
type Summary struct {
	Input     string    `json:"input"`
	OutputDir string    `json:"output_dir"`
	Template  string    `json:"template"`
	StartedAt time.Time `json:"started_at"`

	Duration time.Duration `json:"duration_ns"`

	Total        int `json:"total"`
	Succeeded    int `json:"succeeded"`
	Failed       int `json:"failed"`
	Canceled     int `json:"canceled"`
	Placeholders int `json:"placeholders"`
	BioSkipped   int `json:"bio_skipped"`
	BioOverflow  int `json:"bio_overflow"`

	Outcomes []Outcome `json:"outcomes"`
}

// NewSummary counts the outcomes of a run.
func NewSummary(outcomes []Outcome) *Summary {
	s := &Summary{
		Total:    len(outcomes),
		Outcomes: outcomes,
	}
	s.Succeeded = lo.CountBy(outcomes, func(o Outcome) bool { return o.Status == StatusOK })
	s.Failed = lo.CountBy(outcomes, func(o Outcome) bool { return o.Status == StatusFailed })
	s.Canceled = lo.CountBy(outcomes, func(o Outcome) bool { return o.Status == StatusCanceled })
	s.Placeholders = lo.CountBy(outcomes, func(o Outcome) bool {
		return o.Status == StatusOK && o.Image == AssetUnavailable
	})
	s.BioSkipped = lo.CountBy(outcomes, func(o Outcome) bool { return o.BioSkipped })
	s.BioOverflow = lo.CountBy(outcomes, func(o Outcome) bool { return o.BioOverflow })
	return s
}

// Failures returns the outcomes that did not produce a PDF.
func (s *Summary) Failures() []Outcome {
	return lo.Filter(s.Outcomes, func(o Outcome, _ int) bool { return o.Status != StatusOK })
}

// Degraded returns successful outcomes that carry warnings.
func (s *Summary) Degraded() []Outcome {
	return lo.Filter(s.Outcomes, func(o Outcome, _ int) bool {
		return o.Status == StatusOK && len(o.Warnings) > 0
	})
}
