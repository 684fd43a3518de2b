package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register decoder
	"image/jpeg"
	_ "image/png" // register decoder

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultMaxSide caps the longest side of a normalized photo. At 150mm
// wide that is well above 300 dpi.
const DefaultMaxSide = 2000

// JPEGQuality is the quality of normalized photos.
const JPEGQuality = 95

// orientationTag is the EXIF Orientation tag id.
const orientationTag = 0x0112

// Normalized is a photo ready to embed.
type Normalized struct {
	// JPEG is an opaque RGB baseline JPEG.
	JPEG []byte

	Width  int
	Height int

	// Format is the decoder that read the source ("jpeg", "png", ...).
	Format string

	// Orientation is the EXIF orientation that was applied (1 when none).
	Orientation int
}

// Normalize decodes data in any registered format and re-encodes it as a
// JPEG that gofpdf embeds without conversion.
//
// Design decision: everything gofpdf might reject or misdraw is removed
// here: alpha is composited over white, palettes and CMYK become RGB, the
// EXIF rotation is baked into the pixels (gofpdf ignores EXIF) and
// oversized photos are scaled down so batches stay printable in size.
func Normalize(data []byte, maxSide int) (*Normalized, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrNotImage)
	}

	img := flatten(src)
	orientation := exifOrientation(data)
	img = orient(img, orientation)
	img = downscale(img, maxSide)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return &Normalized{
		JPEG:        buf.Bytes(),
		Width:       img.Bounds().Dx(),
		Height:      img.Bounds().Dy(),
		Format:      format,
		Orientation: orientation,
	}, nil
}

// flatten draws src over an opaque white canvas with its origin at 0,0.
func flatten(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst
}

// downscale shrinks img so its longest side is at most maxSide.
func downscale(img *image.RGBA, maxSide int) *image.RGBA {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return img
	}

	nw, nh := maxSide, maxSide
	if w >= h {
		nh = max(1, (h*maxSide+w/2)/w)
	} else {
		nw = max(1, (w*maxSide+h/2)/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// exifOrientation returns the Orientation tag of the first IFD, or 1 when
// the data has no EXIF block or the tag is absent or out of range.
func exifOrientation(data []byte) int {
	raw, err := exif.SearchAndExtractExif(data)
	if err != nil || raw == nil {
		return 1
	}

	entries, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return 1
	}

	for _, entry := range entries {
		if entry.TagId != orientationTag {
			continue
		}
		if v, ok := entry.Value.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0])
		}
		return 1
	}
	return 1
}

// orient returns img transformed so that it displays upright for the
// given EXIF orientation.
func orient(img *image.RGBA, orientation int) *image.RGBA {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for sy := range h {
		for sx := range w {
			var dx, dy int
			switch orientation {
			case 2: // mirrored
				dx, dy = w-1-sx, sy
			case 3: // rotated 180
				dx, dy = w-1-sx, h-1-sy
			case 4: // mirrored vertically
				dx, dy = sx, h-1-sy
			case 5: // transposed
				dx, dy = sy, sx
			case 6: // rotated 90 clockwise
				dx, dy = h-1-sy, sx
			case 7: // transversed
				dx, dy = h-1-sy, w-1-sx
			case 8: // rotated 90 counter-clockwise
				dx, dy = sy, w-1-sx
			}
			si := img.PixOffset(sx, sy)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], img.Pix[si:si+4])
		}
	}
	return dst
}
