package report

import (
	"io"

	"github.com/iranrevolution2026/posters/internal/model"
)

// Writer writes a run summary in one format.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(summary *model.Summary) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
//
// Design decision: this is not io.MultiWriter because our writers take a
// summary, not bytes, and each renders its own format.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to every writer and stops on the first error.
func (m *MultiWriter) Write(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
