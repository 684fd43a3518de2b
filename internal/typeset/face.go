package typeset

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Style is a gofpdf font style string.
type Style string

// Supported styles.
const (
	StyleRegular Style = ""
	StyleBold    Style = "B"
	StyleItalic  Style = "I"
)

// Alignment values understood by Render, as gofpdf spells them.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

// Face measures and draws text in one font family.
type Face interface {
	// Name identifies the face in logs and reports.
	Name() string

	// Covers reports whether every visible rune of text can be drawn.
	Covers(text string) bool

	// Register makes the face available in pdf. It must be called once
	// per document before Measure or Render.
	Register(pdf *gofpdf.Fpdf)

	// Measure wraps text to width at the given size. Nothing is drawn.
	Measure(pdf *gofpdf.Fpdf, text string, style Style, size, width, lineHeight float64) Block

	// Render draws the lines of b starting at (x, y) and returns the y
	// coordinate below the last line.
	Render(pdf *gofpdf.Fpdf, b Block, x, y, width float64, align string) float64
}

// Block is text that has been wrapped for one face, size and width.
// Lines are already encoded and ordered for drawing.
type Block struct {
	Face       string
	Style      Style
	Size       float64
	LineHeight float64
	Lines      []string
}

// Height returns the vertical space the block occupies.
func (b Block) Height() float64 {
	return float64(len(b.Lines)) * b.LineHeight
}

// Empty reports whether the block has nothing to draw.
func (b Block) Empty() bool {
	return len(b.Lines) == 0
}

// Select returns preferred when it covers text, otherwise fallback when
// that one does. When neither covers text preferred is returned and the
// uncovered runes are dropped or drawn as missing glyphs. fallback may be nil.
func Select(text string, preferred, fallback Face) Face {
	if preferred.Covers(text) || fallback == nil {
		return preferred
	}
	if fallback.Covers(text) {
		return fallback
	}
	return preferred
}

// renderLines draws pre-wrapped lines one cell per line.
func renderLines(pdf *gofpdf.Fpdf, lines []string, x, y, width, lineHeight float64, align string) float64 {
	for i, line := range lines {
		pdf.SetXY(x, y+float64(i)*lineHeight)
		pdf.CellFormat(width, lineHeight, line, "", 0, align, false, 0, "")
	}
	return y + float64(len(lines))*lineHeight
}

// clean removes carriage returns and surrounding blank space.
func clean(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
}
