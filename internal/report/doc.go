// Package report writes the summary of a poster run.
//
// This package contains writers for different output formats:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tooling and archives
//   - MarkdownWriter: a shareable document with tables and a pie chart
//
// Design decision: report writing is separate from the data (model.Summary)
// so that output formats can be added without touching the pipeline.
//
// Digest computes the SHA3-256 recorded for every poster, so printed
// copies can be matched against the files that were distributed.
package report
