// Package typeset measures and draws text blocks on a gofpdf document.
//
// A Face hides the difference between the built-in PDF core font
// (Helvetica, single-byte cp1252) and an embedded TrueType face that can
// draw Persian and other scripts. Both implement the same two-phase
// contract: Measure wraps text into a Block without drawing anything, and
// Render draws exactly the lines of that Block. Layout code can therefore
// try several font sizes with Measure and be sure that the size it picks
// occupies the measured height on the page.
//
// The TrueType face is loaded once at startup by Probe. A missing or
// unusable font file is reported as a *FontLoadError; callers log it and
// keep going with the core face only.
package typeset
