package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iranrevolution2026/posters/internal/model"
)

// SimpleWriter outputs a plain-text summary for the terminal.
//
// Design decision: plain ASCII without colors, so the output reads the
// same in a terminal, a CI log or a file.
type SimpleWriter struct {
	baseWriter

	// verbose lists the warnings of every degraded poster.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-poster warning list.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeFailures(&sb, summary)
	if w.verbose {
		w.writeWarnings(&sb, summary)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("Poster run summary\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	if s.Input != "" {
		fmt.Fprintf(sb, "Input:     %s\n", s.Input)
	}
	if s.OutputDir != "" {
		fmt.Fprintf(sb, "Output:    %s\n", s.OutputDir)
	}
	if s.Template != "" {
		fmt.Fprintf(sb, "Template:  %s\n", s.Template)
	}
	fmt.Fprintf(sb, "Duration:  %s\n", s.Duration.Round(time.Millisecond))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, s *model.Summary) {
	fmt.Fprintf(sb, "Total: %d  Written: %d  Failed: %d  Canceled: %d\n",
		s.Total, s.Succeeded, s.Failed, s.Canceled)
	fmt.Fprintf(sb, "Placeholders: %d  Bio skipped: %d  Bio clipped: %d\n",
		s.Placeholders, s.BioSkipped, s.BioOverflow)
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, s *model.Summary) {
	failures := s.Failures()
	if len(failures) == 0 {
		return
	}

	sb.WriteString("\nNot written:\n")
	for _, o := range failures {
		fmt.Fprintf(sb, "  [!!] %s (%s): %s\n", o.Name, o.ID, o.Error)
	}
}

func (w *SimpleWriter) writeWarnings(sb *strings.Builder, s *model.Summary) {
	degraded := s.Degraded()
	if len(degraded) == 0 {
		return
	}

	sb.WriteString("\nWritten with warnings:\n")
	for _, o := range degraded {
		fmt.Fprintf(sb, "  %s (%s)\n", o.Name, o.ID)
		for _, warning := range o.Warnings {
			fmt.Fprintf(sb, "    [!] %s\n", warning)
		}
	}
}
