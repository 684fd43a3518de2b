package model

import (
	"errors"
	"fmt"
)

// AssetKind tells whether a usable photo was resolved for a record.
type AssetKind int

const (
	// AssetUnknown is the zero value: nothing has been resolved yet. It is
	// drawn as the placeholder but never counted as one.
	AssetUnknown AssetKind = iota

	// AssetUnavailable means no photo could be used and the placeholder is drawn.
	AssetUnavailable

	// AssetImage means Path holds an opaque RGB JPEG ready for embedding.
	AssetImage
)

// String returns a short label for reports.
func (k AssetKind) String() string {
	switch k {
	case AssetUnavailable:
		return "placeholder"
	case AssetImage:
		return "image"
	default:
		return "unknown"
	}
}

// MarshalText writes the label, so stored summaries keep the photo kind.
func (k AssetKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ErrUnknownAssetKind is returned when a stored photo kind is not recognised.
var ErrUnknownAssetKind = errors.New("unknown asset kind")

// UnmarshalText reads a label written by MarshalText.
func (k *AssetKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unknown", "":
		*k = AssetUnknown
	case "placeholder":
		*k = AssetUnavailable
	case "image":
		*k = AssetImage
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAssetKind, text)
	}
	return nil
}

// Asset is the resolved photo of a record.
//
// An Asset is never an error: a missing link, a timeout, a 404 or an
// undecodable body all end up as an unavailable asset whose Reason says
// what happened.
type Asset struct {
	Kind AssetKind `json:"kind"`

	// Path is the normalized JPEG on disk. Empty when unavailable.
	Path string `json:"path,omitempty"`

	// Width and Height are the pixel dimensions of the normalized image.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// Source is the URL the pixels came from, after page image discovery.
	Source string `json:"source,omitempty"`

	// Reason explains why no image is available.
	Reason string `json:"reason,omitempty"`
}

// ImageAsset returns an available asset.
func ImageAsset(path string, width, height int) Asset {
	return Asset{Kind: AssetImage, Path: path, Width: width, Height: height}
}

// Unavailable returns an asset that renders as the placeholder.
func Unavailable(reason string) Asset {
	return Asset{Kind: AssetUnavailable, Reason: reason}
}

// Available reports whether the asset can be embedded.
func (a Asset) Available() bool {
	return a.Kind == AssetImage && a.Path != "" && a.Width > 0 && a.Height > 0
}

// AspectRatio returns height / width, or 0 when unavailable.
func (a Asset) AspectRatio() float64 {
	if !a.Available() {
		return 0
	}
	return float64(a.Height) / float64(a.Width)
}
