package shaping

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/bidi"
)

// VisualLine returns one wrapped line in left-to-right drawing order.
//
// The base direction is taken from the first strong character. Right-to-left
// runs are reversed with their combining marks kept after the base letter,
// and brackets are mirrored. When the base direction is right-to-left the
// runs themselves are drawn in reverse order. A line without right-to-left
// characters, or one the bidi package rejects, is returned unchanged.
func VisualLine(line string) string {
	if !NeedsShaping(line) {
		return line
	}

	rtl := baseIsRTL(line)
	opts := []bidi.Option{}
	if rtl {
		opts = append(opts, bidi.DefaultDirection(bidi.RightToLeft))
	}

	var p bidi.Paragraph
	n, err := p.SetString(line, opts...)
	if err != nil || n != len(line) {
		return line
	}
	order, err := p.Order()
	if err != nil {
		return line
	}

	runs := make([]string, 0, order.NumRuns())
	for i := range order.NumRuns() {
		run := order.Run(i)
		if run.Direction() == bidi.RightToLeft {
			runs = append(runs, reverseRun(run.String()))
			continue
		}
		runs = append(runs, run.String())
	}
	if rtl {
		slices.Reverse(runs)
	}
	return strings.Join(runs, "")
}

// baseIsRTL reports whether the first strong character of s is
// right-to-left.
func baseIsRTL(s string) bool {
	for _, r := range s {
		props, _ := bidi.LookupRune(r)
		switch props.Class() {
		case bidi.L:
			return false
		case bidi.R, bidi.AL:
			return true
		}
	}
	return false
}

// reverseRun reverses a right-to-left run cluster by cluster. A cluster is
// a base rune followed by its transparent marks, so marks stay after the
// letter they decorate. bidi.ReverseString on a single rune mirrors it when
// it is a bracket.
func reverseRun(s string) string {
	var clusters [][]rune
	for _, r := range s {
		if joiningType(r) == joinTransparent && len(clusters) > 0 {
			last := len(clusters) - 1
			clusters[last] = append(clusters[last], r)
			continue
		}
		clusters = append(clusters, []rune{r})
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := len(clusters) - 1; i >= 0; i-- {
		c := clusters[i]
		b.WriteString(bidi.ReverseString(string(c[0])))
		for _, m := range c[1:] {
			b.WriteRune(m)
		}
	}
	return b.String()
}

// Prepare reshapes s for measurement. Lines produced by wrapping the
// result are passed to VisualLine before drawing.
func Prepare(s string) string {
	return Reshape(s)
}
