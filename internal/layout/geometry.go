package layout

// Rect is an axis-aligned rectangle in millimetres, origin top-left.
type Rect struct {
	X, Y, W, H float64
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Overlaps reports whether r and o share any interior area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Placement is where the photo, or the placeholder standing in for it,
// is drawn.
type Placement struct {
	// Rect is the photo or placeholder rectangle.
	Rect Rect

	// Placeholder is true when no photo is available.
	Placeholder bool

	// Label is the cell of the "IMAGE UNAVAILABLE" caption, centred on the
	// placeholder's vertical midpoint. Zero for photos.
	Label Rect

	// Advance is how far the cursor moves: the drawn height plus
	// ImagePadding.
	Advance float64
}

// PlaceImage positions a photo with the given aspect ratio (height/width)
// at cursorY. When ok is false, or the ratio is not positive, the
// placeholder is placed instead.
//
// A photo is drawn ImageWidth wide unless that would make it taller than
// MaxImageHeight, in which case its height is clamped and its width shrunk
// to keep the ratio. Either way it is centred horizontally.
func (t Template) PlaceImage(aspect float64, ok bool, cursorY float64) Placement {
	var p Placement

	if !ok || aspect <= 0 {
		h := min(t.PlaceholderHeight, t.MaxImageHeight)
		p.Placeholder = true
		p.Advance = h + t.ImagePadding
		p.Rect = Rect{X: t.centredX(t.ImageWidth), Y: cursorY, W: t.ImageWidth, H: h}
		p.Label = Rect{
			X: t.Margin,
			Y: cursorY + h/2 - t.PlaceholderLabelHeight/2,
			W: t.WritableWidth(),
			H: t.PlaceholderLabelHeight,
		}
		return p
	}

	w, h := t.ImageWidth, t.ImageWidth*aspect
	if h > t.MaxImageHeight {
		h = t.MaxImageHeight
		w = h / aspect
	}
	p.Rect = Rect{X: t.centredX(w), Y: cursorY, W: w, H: h}
	p.Advance = h + t.ImagePadding
	return p
}

// ImageZoneHeight is the largest Advance of PlaceImage: a photo clamped to
// MaxImageHeight, padding included.
func (t Template) ImageZoneHeight() float64 {
	return t.MaxImageHeight + t.ImagePadding
}

func (t Template) centredX(w float64) float64 {
	return (t.PageWidth - w) / 2
}

// BioBudget returns the height available for the biography when it starts
// at cursorY, and whether that is enough to draw anything.
func (t Template) BioBudget(cursorY float64) (float64, bool) {
	available := t.QR.Y - cursorY - t.BioSafety
	return available, available >= t.BioMinimum
}

// Fit is the result of the font-size search.
type Fit struct {
	// Size is the chosen font size in points.
	Size float64

	// LineHeight is Size times the template's line ratio.
	LineHeight float64

	// Height is the measured height of the text at Size.
	Height float64

	// Fits is false when even the smallest size exceeds the budget.
	Fits bool

	// Tried is the number of sizes measured.
	Tried int
}

// MeasureFunc returns the wrapped height of a text at the given font size
// and line height. It must not draw anything.
type MeasureFunc func(size, lineHeight float64) float64

// FitFont walks ladder from the first (largest) size down and returns the
// first size whose measured height fits in budget. When none fits the last
// size is returned with Fits set to false. ladder must not be empty.
func FitFont(ladder []float64, ratio, budget float64, measure MeasureFunc) Fit {
	var fit Fit
	for _, size := range ladder {
		lh := size * ratio
		h := measure(size, lh)
		fit = Fit{Size: size, LineHeight: lh, Height: h, Tried: fit.Tried + 1}
		if h <= budget {
			fit.Fits = true
			return fit
		}
	}
	return fit
}

// MaxLines returns how many lines of lineHeight fit in budget.
func MaxLines(budget, lineHeight float64) int {
	if lineHeight <= 0 || budget <= 0 {
		return 0
	}
	// Tolerate float error from summing line heights.
	return int(budget/lineHeight + 1e-9)
}
