package asset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/iranrevolution2026/posters/internal/model"
)

// Reasons reported for unavailable photos that are not fetch errors.
const (
	ReasonNoLink   = "no photo link"
	ReasonCanceled = "canceled"
)

// Resolver turns a record's photo link into a local JPEG.
type Resolver struct {
	fetcher *Fetcher
	dir     string
	maxSide int
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMaxSide sets the longest side of normalized photos.
func WithMaxSide(px int) Option {
	return func(r *Resolver) {
		r.maxSide = px
	}
}

// NewResolver creates a Resolver that stores photos in dir.
func NewResolver(fetcher *Fetcher, dir string, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		dir:     dir,
		maxSide: DefaultMaxSide,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Dir returns the directory photos are written to.
func (r *Resolver) Dir() string {
	return r.dir
}

// Resolve downloads and normalizes the photo of rec into <stem>.jpg.
// It never fails: problems produce an unavailable asset with a reason.
// Safe for concurrent use with distinct stems.
func (r *Resolver) Resolve(ctx context.Context, rec model.VictimRecord, stem string) model.Asset {
	link := rec.PhotoURL()
	if link == "" {
		return model.Unavailable(ReasonNoLink)
	}
	if ctx.Err() != nil {
		return model.Unavailable(ReasonCanceled)
	}

	asset, err := r.resolve(ctx, link, stem)
	if err != nil {
		if ctx.Err() != nil {
			return model.Unavailable(ReasonCanceled)
		}
		r.logger.Warn("photo unavailable", "id", rec.ID, "url", link, "error", err)
		return model.Unavailable(err.Error())
	}

	r.logger.Debug("photo resolved", "id", rec.ID, "url", asset.Source,
		"width", asset.Width, "height", asset.Height)
	return asset
}

func (r *Resolver) resolve(ctx context.Context, link, stem string) (model.Asset, error) {
	resp, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		return model.Asset{}, err
	}

	// A post page: follow its main image, one hop only.
	if resp.IsHTML() {
		page := resp.URL.String()
		imageURL, err := FindPageImage(bytes.NewReader(resp.Body), resp.URL)
		if err != nil {
			return model.Asset{}, &FetchError{URL: page, Stage: StageDiscover, Err: err}
		}
		resp, err = r.fetcher.Fetch(ctx, imageURL)
		if err != nil {
			return model.Asset{}, err
		}
		if resp.IsHTML() {
			return model.Asset{}, &FetchError{URL: imageURL, Stage: StageDecode, Err: fmt.Errorf("%w: got a web page", ErrNotImage)}
		}
	}

	source := resp.URL.String()
	img, err := Normalize(resp.Body, r.maxSide)
	if err != nil {
		return model.Asset{}, &FetchError{URL: source, Stage: StageDecode, Err: err}
	}

	path, err := r.write(stem, img.JPEG)
	if err != nil {
		return model.Asset{}, &FetchError{URL: source, Stage: StageWrite, Err: err}
	}

	asset := model.ImageAsset(path, img.Width, img.Height)
	asset.Source = source
	return asset, nil
}

func (r *Resolver) write(stem string, data []byte) (string, error) {
	if stem == "" {
		return "", errors.New("empty file name")
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, stem+".jpg")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
