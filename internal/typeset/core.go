package typeset

import (
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding/charmap"
)

// DefaultCoreFamily is the core font used when nothing else is configured.
const DefaultCoreFamily = "Helvetica"

// CoreFace draws text with one of the 14 standard PDF fonts. These fonts
// need no embedding but only cover the Windows-1252 character set.
type CoreFace struct {
	family string
}

// NewCoreFace returns a core face for family ("Helvetica", "Times" or
// "Courier"). An empty family selects Helvetica.
func NewCoreFace(family string) *CoreFace {
	if family == "" {
		family = DefaultCoreFamily
	}
	return &CoreFace{family: family}
}

// Name returns the font family.
func (c *CoreFace) Name() string {
	return c.family
}

// Covers reports whether text is representable in Windows-1252.
func (c *CoreFace) Covers(text string) bool {
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return false
		}
	}
	return true
}

// Register is a no-op: core fonts are built into every PDF reader.
func (c *CoreFace) Register(*gofpdf.Fpdf) {}

// Measure encodes text to Windows-1252, dropping runes that have no
// mapping, and wraps it with gofpdf's byte-oriented splitter.
func (c *CoreFace) Measure(pdf *gofpdf.Fpdf, text string, style Style, size, width, lineHeight float64) Block {
	b := Block{Face: c.family, Style: style, Size: size, LineHeight: lineHeight}

	encoded := Encode1252(clean(text))
	if encoded == "" {
		return b
	}

	pdf.SetFont(c.family, string(style), size)
	for _, line := range pdf.SplitLines([]byte(encoded), width) {
		b.Lines = append(b.Lines, string(line))
	}
	return b
}

// Render draws b.
func (c *CoreFace) Render(pdf *gofpdf.Fpdf, b Block, x, y, width float64, align string) float64 {
	pdf.SetFont(c.family, string(b.Style), b.Size)
	return renderLines(pdf, b.Lines, x, y, width, b.LineHeight, align)
}

// Encode1252 converts s to the single-byte encoding core fonts expect.
// Runes without a Windows-1252 mapping are dropped, format characters
// such as ZWNJ included.
func Encode1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if e, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(e)
		}
	}
	return b.String()
}
