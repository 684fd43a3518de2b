package compose

import (
	"io"

	"github.com/iranrevolution2026/posters/internal/layout"
	"github.com/iranrevolution2026/posters/internal/typeset"
)

// Page is a composed poster and the geometry that was used to draw it.
type Page struct {
	// ID is the record id; URL is the verification link in the QR code.
	ID  string
	URL string

	// Image is the photo or placeholder placement.
	Image layout.Placement

	// Name and Secondary are the name blocks; Secondary is empty when the
	// record has none or it was skipped.
	Name             typeset.Block
	Secondary        typeset.Block
	SecondarySkipped bool

	// Meta is the "{city}  |  {date}" line.
	Meta typeset.Block

	Bio Bio

	// QR is where the QR code was drawn.
	QR layout.Rect

	// Warnings describe degraded output, in drawing order.
	Warnings []string

	data []byte
}

// Bio describes how the biography was fitted.
type Bio struct {
	// Rect is the area the drawn lines occupy.
	Rect layout.Rect

	Block  typeset.Block
	Fit    layout.Fit
	Budget float64

	// Skipped is set when the budget was below the template minimum.
	Skipped bool

	// Truncated is set when even the smallest size overflowed and lines
	// past the budget were dropped.
	Truncated bool
}

// Bytes returns the PDF file.
func (p *Page) Bytes() []byte {
	return p.data
}

// WriteTo writes the PDF file to w.
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.data)
	return int64(n), err
}

func (p *Page) warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}
