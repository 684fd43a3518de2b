package report

import (
	"encoding/json"
	"io"

	"github.com/iranrevolution2026/posters/internal/model"
)

// JSONWriter outputs the summary as JSON.
//
// Design decision: encoding/json is enough for a flat summary. Outcome
// errors are carried as strings (Outcome.Error) since error values do not
// marshal.
type JSONWriter struct {
	baseWriter

	// indentPrefix and indentString enable pretty-printed output when
	// either is non-empty.
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary followed by a newline.
func (w *JSONWriter) Write(summary *model.Summary) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indentPrefix != "" || w.indentString != "" {
		data, err = json.MarshalIndent(summary, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(summary)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}
