package compose

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/iranrevolution2026/posters/internal/layout"
	"github.com/iranrevolution2026/posters/internal/model"
	"github.com/iranrevolution2026/posters/internal/qrcode"
	"github.com/iranrevolution2026/posters/internal/typeset"
)

// Creator is written to the PDF metadata of every poster.
const Creator = "posters"

// qrImageName is the gofpdf resource name of the QR image. Every document
// holds exactly one.
const qrImageName = "qr"

// Settings is the read-only configuration of a Composer.
type Settings struct {
	// Template is the page design.
	Template layout.Template

	// BaseURL is the verification site; the QR code encodes
	// BaseURL + "/?id=" + id.
	BaseURL string
}

// Composer draws posters. It holds no per-record state.
type Composer struct {
	settings Settings
	core     typeset.Face
	unicode  typeset.Face
	logger   *slog.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithUnicodeFace sets the script-capable face used for secondary names,
// for text the core face cannot encode and, in templates that prefer it,
// for biographies. Without it secondary-script names are skipped.
func WithUnicodeFace(face typeset.Face) Option {
	return func(c *Composer) {
		c.unicode = face
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// New creates a Composer.
func New(settings Settings, opts ...Option) *Composer {
	c := &Composer{
		settings: settings,
		core:     typeset.NewCoreFace(typeset.DefaultCoreFamily),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compose draws rec on a new page. asset may be unavailable; the
// placeholder is drawn then. The record is not modified.
//
// Degraded output (missing photo, skipped secondary name, skipped or
// truncated biography) is reported in Page.Warnings, not as an error.
// An error means no usable page could be produced.
func (c *Composer) Compose(rec model.VictimRecord, asset model.Asset) (*Page, error) {
	t := c.settings.Template
	page := &Page{
		ID:  rec.ID,
		URL: rec.VerificationURL(c.settings.BaseURL),
		QR:  t.QRRect(),
	}

	pdf := c.newDocument(rec, page.URL)
	pdf.AddPage()

	y := t.ContentTop
	y = c.drawImage(pdf, page, asset, y)
	y = c.drawNames(pdf, page, rec, y)
	y = c.drawMeta(pdf, page, rec, y)
	c.drawBio(pdf, page, rec, y)

	if err := c.drawQR(pdf, page.URL); err != nil {
		return nil, err
	}

	if pdf.Err() {
		return nil, fmt.Errorf("render %s: %w", rec.ID, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", rec.ID, err)
	}
	page.data = buf.Bytes()

	c.logger.Debug("poster composed",
		"id", rec.ID,
		"placeholder", page.Image.Placeholder,
		"bio_size", page.Bio.Fit.Size,
		"warnings", len(page.Warnings),
	)
	return page, nil
}

// newDocument creates an A4 document with the header and footer installed
// and the faces registered.
func (c *Composer) newDocument(rec model.VictimRecord, url string) *gofpdf.Fpdf {
	t := c.settings.Template

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(t.Margin, t.Margin, t.Margin)
	// One record, one page: text that does not fit is handled by the
	// layout, never by a page break.
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.SetCatalogSort(true)

	stamp := documentDate(rec.Date)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetTitle(rec.Name, true)
	pdf.SetSubject(url, true)
	pdf.SetKeywords(rec.City, true)
	pdf.SetCreator(Creator, false)
	pdf.SetProducer(Creator, false)

	c.core.Register(pdf)
	if c.unicode != nil {
		c.unicode.Register(pdf)
	}

	pdf.SetHeaderFunc(func() { c.drawHeader(pdf) })
	pdf.SetFooterFunc(func() { c.drawFooter(pdf) })
	return pdf
}

func (c *Composer) drawHeader(pdf *gofpdf.Fpdf) {
	t := c.settings.Template
	w := t.WritableWidth()

	pdf.SetTextColor(0, 0, 0)
	face := c.pick(t.Title, c.core)
	b := face.Measure(pdf, t.Title, typeset.StyleBold, t.TitleSize, w, t.TitleHeight)
	b.Lines = firstLine(b.Lines)
	face.Render(pdf, b, t.Margin, t.Margin, w, layout.AlignCenter)

	pdf.SetLineWidth(t.RuleWidth)
	pdf.SetDrawColor(t.RuleColor.R, t.RuleColor.G, t.RuleColor.B)
	pdf.Line(t.RuleX1, t.RuleY, t.RuleX2, t.RuleY)
}

func (c *Composer) drawFooter(pdf *gofpdf.Fpdf) {
	t := c.settings.Template
	w := t.WritableWidth()

	pdf.SetTextColor(t.CaptionColor.R, t.CaptionColor.G, t.CaptionColor.B)
	face := c.pick(t.Caption, c.core)
	b := face.Measure(pdf, t.Caption, typeset.StyleItalic, t.CaptionSize, w, t.CaptionHeight)
	b.Lines = firstLine(b.Lines)
	face.Render(pdf, b, t.Margin, t.FooterY(), w, t.CaptionAlign)
}

func (c *Composer) drawImage(pdf *gofpdf.Fpdf, page *Page, asset model.Asset, y float64) float64 {
	t := c.settings.Template
	placement := t.PlaceImage(asset.AspectRatio(), asset.Available(), y)

	if !placement.Placeholder {
		opts := gofpdf.ImageOptions{ImageType: "JPG"}
		pdf.RegisterImageOptions(asset.Path, opts)
		if pdf.Err() {
			// A photo that decoded during resolution but that gofpdf
			// rejects still gets the placeholder.
			page.warn(fmt.Sprintf("photo not embeddable: %v", pdf.Error()))
			pdf.ClearError()
			placement = t.PlaceImage(0, false, y)
		} else {
			r := placement.Rect
			pdf.ImageOptions(asset.Path, r.X, r.Y, r.W, r.H, false, opts, 0, "")
		}
	} else if asset.Reason != "" {
		page.warn("image unavailable: " + asset.Reason)
	}

	if placement.Placeholder {
		r := placement.Rect
		pdf.SetFillColor(t.PlaceholderColor.R, t.PlaceholderColor.G, t.PlaceholderColor.B)
		pdf.Rect(r.X, r.Y, r.W, r.H, "F")

		pdf.SetTextColor(0, 0, 0)
		l := placement.Label
		b := c.core.Measure(pdf, t.PlaceholderLabel, typeset.StyleBold, t.PlaceholderLabelSize, l.W, l.H)
		c.core.Render(pdf, b, l.X, l.Y, l.W, layout.AlignCenter)
	}

	page.Image = placement
	return y + placement.Advance
}

func (c *Composer) drawNames(pdf *gofpdf.Fpdf, page *Page, rec model.VictimRecord, y float64) float64 {
	t := c.settings.Template
	w := t.WritableWidth()
	pdf.SetTextColor(0, 0, 0)

	face := c.pick(rec.Name, c.core)
	page.Name = face.Measure(pdf, rec.Name, typeset.StyleBold, t.NameSize, w, t.NameLineHeight)
	y = face.Render(pdf, page.Name, t.Margin, y, w, layout.AlignCenter)

	if t.Secondary && rec.HasSecondaryName() {
		switch {
		case c.unicode == nil:
			page.SecondarySkipped = true
			page.warn("secondary name skipped: no script-capable font loaded")
		case !c.unicode.Covers(rec.NameSecondary):
			page.SecondarySkipped = true
			page.warn(fmt.Sprintf("secondary name skipped: %s cannot draw %q", c.unicode.Name(), rec.NameSecondary))
		default:
			page.Secondary = c.unicode.Measure(pdf, rec.NameSecondary, typeset.StyleRegular, t.SecondarySize, w, t.SecondaryLineHeight)
			y = c.unicode.Render(pdf, page.Secondary, t.Margin, y, w, layout.AlignCenter)
		}
	}

	return y + t.NameGap
}

func (c *Composer) drawMeta(pdf *gofpdf.Fpdf, page *Page, rec model.VictimRecord, y float64) float64 {
	t := c.settings.Template
	w := t.WritableWidth()

	pdf.SetTextColor(t.MetaColor.R, t.MetaColor.G, t.MetaColor.B)
	meta := rec.MetaLine()
	face := c.pick(meta, c.core)
	page.Meta = face.Measure(pdf, meta, typeset.StyleRegular, t.MetaSize, w, t.MetaLineHeight)
	y = face.Render(pdf, page.Meta, t.Margin, y, w, layout.AlignCenter)

	return y + t.MetaGap
}

// drawBio fits the biography between y and the QR code. The same face,
// text, width and line height are used to measure and to draw, and the
// block drawn is the one that was measured.
func (c *Composer) drawBio(pdf *gofpdf.Fpdf, page *Page, rec model.VictimRecord, y float64) {
	t := c.settings.Template
	w := t.WritableWidth()

	budget, ok := t.BioBudget(y)
	page.Bio.Budget = budget
	if !ok {
		page.Bio.Skipped = true
		page.warn(fmt.Sprintf("skipping bio for %s: not enough space", rec.Name))
		return
	}

	preferred, other := c.core, c.unicode
	if t.PreferUnicodeBio && c.unicode != nil {
		preferred, other = c.unicode, c.core
	}
	face := typeset.Select(rec.Bio, preferred, other)

	blocks := make(map[float64]typeset.Block, len(t.FontSizes))
	fit := layout.FitFont(t.FontSizes, t.BioLineRatio, budget, func(size, lineHeight float64) float64 {
		b := face.Measure(pdf, rec.Bio, typeset.StyleRegular, size, w, lineHeight)
		blocks[size] = b
		return b.Height()
	})
	block := blocks[fit.Size]

	if !fit.Fits {
		// Best effort: smallest size, and never into the QR code.
		if n := layout.MaxLines(budget, fit.LineHeight); n < len(block.Lines) {
			block.Lines = block.Lines[:n]
			page.Bio.Truncated = true
		}
		page.warn(fmt.Sprintf("bio for %s does not fit at %gpt; %d lines drawn", rec.Name, fit.Size, len(block.Lines)))
	}

	pdf.SetTextColor(0, 0, 0)
	bottom := face.Render(pdf, block, t.Margin, y, w, t.BioAlign)

	page.Bio.Fit = fit
	page.Bio.Block = block
	page.Bio.Rect = layout.Rect{X: t.Margin, Y: y, W: w, H: bottom - y}
}

func (c *Composer) drawQR(pdf *gofpdf.Fpdf, url string) error {
	png, err := qrcode.Encode(url, qrcode.DefaultPixels)
	if err != nil {
		return fmt.Errorf("qr code for %s: %w", url, err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, opts, bytes.NewReader(png))
	r := c.settings.Template.QRRect()
	// The QR image doubles as a link for readers viewing the PDF on screen.
	pdf.ImageOptions(qrImageName, r.X, r.Y, r.W, r.H, false, opts, 0, url)
	return nil
}

// pick returns the face that can draw text: preferred when it covers it,
// otherwise the script-capable face when one is loaded.
func (c *Composer) pick(text string, preferred typeset.Face) typeset.Face {
	if c.unicode == nil {
		return preferred
	}
	return typeset.Select(text, preferred, c.unicode)
}

func firstLine(lines []string) []string {
	if len(lines) > 1 {
		return lines[:1]
	}
	return lines
}

// dateLayouts are the record date formats used to stamp the PDF.
var dateLayouts = []string{"2006-01-02", "2006/01/02", time.RFC3339, "January 2, 2006", "2 January 2006"}

// documentDate returns the record date at midnight UTC, or the Unix epoch
// when the date cannot be parsed. Either way identical input produces
// identical PDF bytes.
func documentDate(s string) time.Time {
	for _, l := range dateLayouts {
		if d, err := time.Parse(l, s); err == nil {
			return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Unix(0, 0).UTC()
}
