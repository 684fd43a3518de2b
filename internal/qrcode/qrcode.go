// Package qrcode renders the verification QR code printed on every poster.
package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"golang.org/x/image/draw"
)

// QuietZone is the white border around the symbol, in modules. Four
// modules is the minimum most phone scanners need on a printed page.
const QuietZone = 4

// DefaultPixels is the raster size used for a 45 mm square at ~300 dpi.
const DefaultPixels = 540

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qrcode: empty content")

// Encode returns a grayscale PNG of content encoded with error correction
// level M, including the quiet zone. The image is at most px pixels wide
// and is always a whole multiple of the module count, so modules stay sharp
// when the PDF viewer scales it.
func Encode(content string, px int) ([]byte, error) {
	img, err := Image(content, px)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("qrcode: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image returns the QR raster for content. See Encode.
func Image(content string, px int) (*image.Gray, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: %w", err)
	}

	modules := code.Bounds().Dx()
	scale := px / (modules + 2*QuietZone)
	if scale < 1 {
		scale = 1
	}

	scaled, err := barcode.Scale(code, modules*scale, modules*scale)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scale: %w", err)
	}

	side := (modules + 2*QuietZone) * scale
	dst := image.NewGray(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	offset := QuietZone * scale
	area := image.Rect(offset, offset, offset+modules*scale, offset+modules*scale)
	draw.Draw(dst, area, scaled, scaled.Bounds().Min, draw.Src)

	return dst, nil
}
