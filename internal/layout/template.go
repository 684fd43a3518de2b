package layout

import (
	"errors"
	"fmt"
	"slices"
)

// Template names.
const (
	NameBilingual = "bilingual"
	NameClassic   = "classic"
)

// Default texts printed on every page.
const (
	DefaultTitle            = "IRAN REVOLUTION 2026"
	DefaultCaption          = "Scan to view verified evidence and sources. | #IranBlackout"
	DefaultPlaceholderLabel = "IMAGE UNAVAILABLE"
)

// Horizontal alignments, spelled the way gofpdf expects them.
const (
	AlignLeft   = "L"
	AlignCenter = "C"
	AlignRight  = "R"
)

// RGB is an 8-bit colour.
type RGB struct {
	R, G, B int
}

// Template is a complete page design. All lengths are millimetres and all
// font sizes points. Templates are values: overriding a field never
// affects the preset it came from.
type Template struct {
	Name string

	PageWidth  float64
	PageHeight float64
	Margin     float64

	// Header: a title cell at the top margin and a rule under it.
	Title       string
	TitleSize   float64
	TitleHeight float64
	RuleY       float64
	RuleX1      float64
	RuleX2      float64
	RuleWidth   float64
	RuleColor   RGB

	// ContentTop is where the image zone starts; the header ends here.
	ContentTop float64

	// Image zone.
	ImageWidth             float64
	MaxImageHeight         float64
	ImagePadding           float64
	PlaceholderHeight      float64
	PlaceholderColor       RGB
	PlaceholderLabel       string
	PlaceholderLabelSize   float64
	PlaceholderLabelHeight float64

	// Names.
	NameSize            float64
	NameLineHeight      float64
	Secondary           bool
	SecondarySize       float64
	SecondaryLineHeight float64
	NameGap             float64

	// Metadata line.
	MetaSize       float64
	MetaLineHeight float64
	MetaColor      RGB
	MetaGap        float64

	// Biography.
	FontSizes    []float64
	BioLineRatio float64
	BioSafety    float64
	BioMinimum   float64
	BioAlign     string

	// PreferUnicodeBio draws the biography with the TrueType face when it
	// is available, even for Latin text.
	PreferUnicodeBio bool

	// QR is the fixed QR code rectangle.
	QR Rect

	// Footer caption, FooterMargin above the bottom edge.
	Caption       string
	CaptionSize   float64
	CaptionHeight float64
	CaptionColor  RGB
	CaptionAlign  string
	FooterMargin  float64
}

// defaultFontSizes is the biography ladder shared by both presets.
var defaultFontSizes = []float64{16, 14, 13, 12, 11, 10, 9, 8}

// base returns the settings shared by every preset: A4 portrait, the
// header, the name block and the biography fit.
func base() Template {
	return Template{
		PageWidth:  210,
		PageHeight: 297,
		Margin:     10,

		Title:       DefaultTitle,
		TitleSize:   26,
		TitleHeight: 15,
		RuleY:       28,
		RuleX1:      20,
		RuleX2:      190,
		RuleWidth:   0.5,
		RuleColor:   RGB{200, 0, 0},
		ContentTop:  35,

		ImagePadding:           10,
		PlaceholderHeight:      80,
		PlaceholderColor:       RGB{230, 230, 230},
		PlaceholderLabel:       DefaultPlaceholderLabel,
		PlaceholderLabelSize:   12,
		PlaceholderLabelHeight: 10,

		NameSize:            24,
		NameLineHeight:      10,
		SecondarySize:       20,
		SecondaryLineHeight: 10,
		NameGap:             2,

		MetaSize:       14,
		MetaLineHeight: 10,
		MetaColor:      RGB{80, 80, 80},
		MetaGap:        5,

		FontSizes:    slices.Clone(defaultFontSizes),
		BioLineRatio: 0.6,
		BioSafety:    5,
		BioMinimum:   10,
		BioAlign:     AlignCenter,

		Caption:       DefaultCaption,
		CaptionSize:   9,
		CaptionHeight: 10,
		CaptionColor:  RGB{100, 100, 100},
		FooterMargin:  20,
	}
}

// Bilingual is the default template: a large photo, the name in two
// scripts, a QR code in the bottom-left corner and a right-aligned caption
// beside it.
func Bilingual() Template {
	t := base()
	t.Name = NameBilingual
	t.ImageWidth = 150
	t.MaxImageHeight = 140
	t.Secondary = true
	t.PreferUnicodeBio = true
	t.QR = Rect{X: 20, Y: 240, W: 45, H: 45}
	t.CaptionAlign = AlignRight
	return t
}

// Classic is the single-script template: a smaller photo, a centred QR
// code and a centred caption.
func Classic() Template {
	t := base()
	t.Name = NameClassic
	t.ImageWidth = 100
	t.MaxImageHeight = 100
	t.QR = Rect{X: (t.PageWidth - 45) / 2, Y: t.PageHeight - 80, W: 45, H: 45}
	t.CaptionAlign = AlignCenter
	return t
}

// ErrUnknownTemplate is returned by ByName.
var ErrUnknownTemplate = errors.New("unknown template")

// ByName returns the preset called name.
func ByName(name string) (Template, error) {
	switch name {
	case NameBilingual, "":
		return Bilingual(), nil
	case NameClassic:
		return Classic(), nil
	default:
		return Template{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
}

// Overrides are the operator-settable parts of a template. Zero values
// keep the preset.
type Overrides struct {
	Title          string
	Caption        string
	FontSizes      []float64
	ImageWidth     float64
	MaxImageHeight float64
}

// With returns a copy of t with the non-zero overrides applied.
func (t Template) With(o Overrides) Template {
	if o.Title != "" {
		t.Title = o.Title
	}
	if o.Caption != "" {
		t.Caption = o.Caption
	}
	if len(o.FontSizes) > 0 {
		t.FontSizes = slices.Clone(o.FontSizes)
	} else {
		t.FontSizes = slices.Clone(t.FontSizes)
	}
	if o.ImageWidth > 0 {
		t.ImageWidth = o.ImageWidth
	}
	if o.MaxImageHeight > 0 {
		t.MaxImageHeight = o.MaxImageHeight
	}
	return t
}

// WritableWidth is the page width inside the left and right margins.
func (t Template) WritableWidth() float64 {
	return t.PageWidth - 2*t.Margin
}

// Page returns the page rectangle.
func (t Template) Page() Rect {
	return Rect{W: t.PageWidth, H: t.PageHeight}
}

// HeaderZone is the reserved band at the top of the page.
func (t Template) HeaderZone() Rect {
	return Rect{W: t.PageWidth, H: t.ContentTop}
}

// FooterZone is the reserved band at the bottom of the page.
func (t Template) FooterZone() Rect {
	return Rect{Y: t.PageHeight - t.FooterMargin, W: t.PageWidth, H: t.FooterMargin}
}

// FooterY is where the caption cell starts.
func (t Template) FooterY() float64 {
	return t.PageHeight - t.FooterMargin
}

// QRRect returns the fixed QR code rectangle.
func (t Template) QRRect() Rect {
	return t.QR
}

// ImageZone is the band the tallest photo can take, padding included.
func (t Template) ImageZone() Rect {
	return Rect{Y: t.ContentTop, W: t.PageWidth, H: t.ImageZoneHeight()}
}

// Template validation errors.
var (
	ErrImageZone     = errors.New("image zone does not fit between header and QR code")
	ErrImageWidth    = errors.New("image width must be positive and fit the page")
	ErrQRPlacement   = errors.New("QR code must lie inside the page below the header")
	ErrQRFooter      = errors.New("QR code overlaps the centred footer caption")
	ErrFontLadder    = errors.New("font sizes must be positive and strictly descending")
	ErrLineRatio     = errors.New("line ratio must be positive")
	ErrHeaderOverlap = errors.New("content starts inside the header")
)

// Validate checks the zone invariants of t.
func (t Template) Validate() error {
	if t.ContentTop < t.RuleY {
		return ErrHeaderOverlap
	}
	if t.ImageWidth <= 0 || t.ImageWidth > t.PageWidth {
		return ErrImageWidth
	}
	if t.QR.W <= 0 || t.QR.H <= 0 || !t.Page().Contains(t.QR) || t.QR.Overlaps(t.HeaderZone()) {
		return ErrQRPlacement
	}
	if t.MaxImageHeight <= 0 || t.ImageZone().Bottom() > t.QR.Y {
		return ErrImageZone
	}
	if t.CaptionAlign == AlignCenter && t.QR.Overlaps(t.FooterZone()) {
		return ErrQRFooter
	}
	if len(t.FontSizes) == 0 {
		return ErrFontLadder
	}
	for i, s := range t.FontSizes {
		if s <= 0 || (i > 0 && s >= t.FontSizes[i-1]) {
			return ErrFontLadder
		}
	}
	if t.BioLineRatio <= 0 {
		return ErrLineRatio
	}
	return nil
}
