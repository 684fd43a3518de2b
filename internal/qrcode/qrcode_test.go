package qrcode

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"testing"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	data, err := Encode("https://iranrevolution.online/?id=v1", DefaultPixels)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected a valid PNG, got %v", err)
	}

	b := img.Bounds()
	if b.Dx() != b.Dy() {
		t.Errorf("expected a square image, got %dx%d", b.Dx(), b.Dy())
	}
	if b.Dx() > DefaultPixels {
		t.Errorf("expected at most %d pixels, got %d", DefaultPixels, b.Dx())
	}

	if !isWhite(img.At(0, 0)) {
		t.Error("expected quiet zone to be white")
	}
}

func TestImageGeometry(t *testing.T) {
	t.Parallel()

	img, err := Image("https://iranrevolution.online/?id=v1", DefaultPixels)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	side := img.Bounds().Dx()
	// Find the first black pixel on the diagonal: that is the finder pattern.
	first := -1
	for i := 0; i < side; i++ {
		if !isWhite(img.At(i, i)) {
			first = i
			break
		}
	}
	if first <= 0 {
		t.Fatalf("expected a white quiet zone before the finder pattern, got %d", first)
	}
	if first%QuietZone != 0 {
		t.Errorf("expected quiet zone to be a whole number of modules, got offset %d", first)
	}
}

func TestEncodeSmallRaster(t *testing.T) {
	t.Parallel()

	// A raster smaller than the symbol still produces one pixel per module.
	img, err := Image("https://iranrevolution.online/?id=v1", 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if img.Bounds().Dx() < 21+2*QuietZone {
		t.Errorf("expected at least one pixel per module, got %d", img.Bounds().Dx())
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	if _, err := Encode("", DefaultPixels); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}

func isWhite(c color.Color) bool {
	g := color.GrayModel.Convert(c).(color.Gray)
	return g.Y > 128
}
