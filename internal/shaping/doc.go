// Package shaping prepares right-to-left text for a PDF writer that places
// glyphs one code point at a time.
//
// gofpdf has no OpenType shaping engine. Arabic-script text drawn as-is
// shows every letter in its isolated form and in logical (reading) order,
// so it renders backwards and disconnected. This package fixes both:
//
//   - Reshape replaces each letter by the presentation form that matches
//     its neighbours (isolated, final, initial, medial) and builds the
//     lam-alef ligatures. It keeps logical order, so widths measured after
//     reshaping are the widths that will be drawn.
//   - VisualLine reorders one line that has already been wrapped into the
//     left-to-right order the page expects, using the Unicode
//     bidirectional algorithm from golang.org/x/text/unicode/bidi.
//
// Callers reshape first, measure and wrap, and then call VisualLine on
// every wrapped line. Wrapping before reordering keeps the first words of
// a sentence on the first line.
package shaping
