package typeset

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/sfnt"

	"github.com/iranrevolution2026/posters/internal/shaping"
)

// trueTypeFamily is the gofpdf family key the embedded face is registered
// under. The real family name is only used for display.
const trueTypeFamily = "posterscript"

// probeRunes are the letters a usable face must map at least one of.
var probeRunes = []rune{'A', 'a', 0x0627, 0xFE8D}

// TrueTypeFace draws text with an embedded TrueType font. Right-to-left
// text is reshaped and put into visual order before it is drawn.
//
// The font bytes are parsed once; each document embeds its own subset.
type TrueTypeFace struct {
	path string
	name string
	data []byte
	font *sfnt.Font
}

// Probe loads the TrueType font at path and checks that gofpdf can embed
// it. Every failure is returned as a *FontLoadError.
func Probe(path string) (*TrueTypeFace, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, &FontLoadError{Path: path, Err: err}
	}
	return ProbeBytes(path, data)
}

// ProbeBytes is Probe for a font that is already in memory. name is used
// in errors and as a fallback display name.
func ProbeBytes(name string, data []byte) (*TrueTypeFace, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, &FontLoadError{Path: name, Err: err}
	}

	face := &TrueTypeFace{path: name, name: name, data: data, font: f}
	if family, err := f.Name(nil, sfnt.NameIDFamily); err == nil && family != "" {
		face.name = family
	}

	var buf sfnt.Buffer
	mapped := false
	for _, r := range probeRunes {
		if face.hasGlyph(&buf, r) {
			mapped = true
			break
		}
	}
	if !mapped {
		return nil, &FontLoadError{Path: name, Err: ErrNoLetters}
	}

	if err := face.tryEmbed(); err != nil {
		return nil, &FontLoadError{Path: name, Err: err}
	}
	return face, nil
}

// tryEmbed registers the font in a scratch document. gofpdf panics on
// some fonts its parser does not understand, so the panic is turned into
// an error here rather than during a batch.
func (t *TrueTypeFace) tryEmbed() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrUnsupportedFont, r)
		}
	}()

	pdf := gofpdf.New("P", "mm", "A4", "")
	t.Register(pdf)
	pdf.SetFont(trueTypeFamily, "", 12)
	pdf.GetStringWidth("probe")
	if pdf.Err() {
		return fmt.Errorf("%w: %v", ErrUnsupportedFont, pdf.Error())
	}
	return nil
}

// Name returns the font family name from the name table.
func (t *TrueTypeFace) Name() string {
	return t.name
}

// Path returns the file the face was loaded from.
func (t *TrueTypeFace) Path() string {
	return t.path
}

// Covers reports whether the font maps every visible rune of text after
// reshaping.
func (t *TrueTypeFace) Covers(text string) bool {
	var buf sfnt.Buffer
	for _, r := range prepare(text) {
		if unicode.IsSpace(r) || unicode.Is(unicode.Cf, r) {
			continue
		}
		if !t.hasGlyph(&buf, r) {
			return false
		}
	}
	return true
}

func (t *TrueTypeFace) hasGlyph(buf *sfnt.Buffer, r rune) bool {
	idx, err := t.font.GlyphIndex(buf, r)
	return err == nil && idx != 0
}

// Register embeds the font in pdf. The face has a single style, so bold
// and italic requests are drawn regular.
func (t *TrueTypeFace) Register(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(trueTypeFamily, "", t.data)
}

// Measure reshapes text, wraps it in logical order and stores every line
// in visual order.
func (t *TrueTypeFace) Measure(pdf *gofpdf.Fpdf, text string, style Style, size, width, lineHeight float64) Block {
	b := Block{Face: t.name, Style: style, Size: size, LineHeight: lineHeight}

	prepared := prepare(text)
	if prepared == "" {
		return b
	}

	pdf.SetFont(trueTypeFamily, "", size)
	for _, line := range pdf.SplitText(prepared, width) {
		b.Lines = append(b.Lines, shaping.VisualLine(line))
	}
	return b
}

// Render draws b.
func (t *TrueTypeFace) Render(pdf *gofpdf.Fpdf, b Block, x, y, width float64, align string) float64 {
	pdf.SetFont(trueTypeFamily, "", b.Size)
	return renderLines(pdf, b.Lines, x, y, width, b.LineHeight, align)
}

// prepare cleans text, drops runes outside the Basic Multilingual Plane
// (gofpdf's width table stops at U+FFFF) and reshapes Arabic script.
func prepare(text string) string {
	text = clean(text)
	text = strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return -1
		}
		return r
	}, text)
	return shaping.Prepare(text)
}
