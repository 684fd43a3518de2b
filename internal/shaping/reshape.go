package shaping

import (
	"strings"
	"unicode"
)

// joining is the Unicode joining type of a rune, reduced to what the
// reshaper needs.
type joining int

const (
	joinNone joining = iota
	joinRight
	joinDual
	joinTransparent
)

func joiningType(r rune) joining {
	if r == tatweel || r == zwj {
		return joinDual
	}
	if f, ok := letters[r]; ok {
		switch {
		case f[formInitial] != 0:
			return joinDual
		case f[formFinal] != 0:
			return joinRight
		default:
			return joinNone
		}
	}
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) {
		return joinTransparent
	}
	// Everything else, ZWNJ included, breaks the joining chain.
	return joinNone
}

// NeedsShaping reports whether s contains Arabic-script or other
// right-to-left runes.
func NeedsShaping(s string) bool {
	for _, r := range s {
		if isRTL(r) {
			return true
		}
	}
	return false
}

// isRTL reports whether r belongs to a right-to-left block: Hebrew,
// Arabic, Syriac, Thaana, NKo and the Arabic presentation forms.
func isRTL(r rune) bool {
	switch {
	case r >= 0x0590 && r <= 0x08FF:
		return true
	case r >= 0xFB1D && r <= 0xFDFF:
		return true
	case r >= 0xFE70 && r <= 0xFEFF:
		return true
	}
	return false
}

// Reshape replaces Arabic-script letters with their contextual
// presentation forms and merges lam followed by alef into a ligature.
// The result stays in logical order. Text without Arabic letters is
// returned unchanged.
func Reshape(s string) string {
	if !NeedsShaping(s) {
		return s
	}

	in := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(in); i++ {
		r := in[i]
		f, ok := letters[r]
		if !ok {
			b.WriteRune(r)
			continue
		}

		prev := neighbour(in, i, -1)
		joinsPrev := prev >= 0 && joiningType(in[prev]) == joinDual && joiningType(r) != joinNone

		if r == lam {
			if next := neighbour(in, i, 1); next >= 0 {
				if lig, ok := lamAlef[in[next]]; ok {
					if joinsPrev {
						b.WriteRune(lig[1])
					} else {
						b.WriteRune(lig[0])
					}
					// Marks between lam and alef stay with the ligature.
					for _, m := range in[i+1 : next] {
						b.WriteRune(m)
					}
					i = next
					continue
				}
			}
		}

		joinsNext := false
		if joiningType(r) == joinDual {
			if next := neighbour(in, i, 1); next >= 0 {
				jt := joiningType(in[next])
				joinsNext = jt == joinDual || jt == joinRight
			}
		}

		b.WriteRune(pick(f, joinsPrev, joinsNext))
	}
	return b.String()
}

// neighbour returns the index of the nearest rune before (dir -1) or after
// (dir 1) position i that is not a transparent mark, or -1.
func neighbour(in []rune, i, dir int) int {
	for j := i + dir; j >= 0 && j < len(in); j += dir {
		if joiningType(in[j]) != joinTransparent {
			return j
		}
	}
	return -1
}

func pick(f forms, joinsPrev, joinsNext bool) rune {
	form := formIsolated
	switch {
	case joinsPrev && joinsNext:
		form = formMedial
	case joinsPrev:
		form = formFinal
	case joinsNext:
		form = formInitial
	}
	if f[form] != 0 {
		return f[form]
	}
	return f[formIsolated]
}
