package asset

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/iranrevolution2026/posters/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func solid(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// withOrientation inserts an EXIF APP1 segment carrying only the
// Orientation tag right after the JPEG SOI marker.
func withOrientation(jpg []byte, orientation byte) []byte {
	tiff := []byte{
		'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08, // header, IFD0 at 8
		0x00, 0x01, // one entry
		0x01, 0x12, 0x00, 0x03, 0x00, 0x00, 0x00, 0x01, 0x00, orientation, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // no next IFD
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	n := len(payload) + 2
	app1 := append([]byte{0xFF, 0xE1, byte(n >> 8), byte(n)}, payload...)

	out := append([]byte{}, jpg[:2]...)
	out = append(out, app1...)
	return append(out, jpg[2:]...)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("transparent png is flattened over white", func(t *testing.T) {
		t.Parallel()

		n, err := Normalize(encodePNG(t, solid(10, 10, color.NRGBA{})), DefaultMaxSide)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Format != "png" {
			t.Errorf("expected format png, got %q", n.Format)
		}
		img, err := jpeg.Decode(bytes.NewReader(n.JPEG))
		if err != nil {
			t.Fatalf("output is not a jpeg: %v", err)
		}
		r, g, b, _ := img.At(5, 5).RGBA()
		if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
			t.Errorf("expected white, got %d,%d,%d", r>>8, g>>8, b>>8)
		}
	})

	t.Run("large photo is scaled down", func(t *testing.T) {
		t.Parallel()

		n, err := Normalize(encodePNG(t, solid(300, 100, color.Black)), 150)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Width != 150 || n.Height != 50 {
			t.Errorf("expected 150x50, got %dx%d", n.Width, n.Height)
		}
	})

	t.Run("small photo keeps its size", func(t *testing.T) {
		t.Parallel()

		n, err := Normalize(encodePNG(t, solid(40, 30, color.Black)), 150)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Width != 40 || n.Height != 30 {
			t.Errorf("expected 40x30, got %dx%d", n.Width, n.Height)
		}
	})

	t.Run("exif rotation is applied", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, solid(40, 20, color.Gray{Y: 128}), nil); err != nil {
			t.Fatalf("failed to encode jpeg: %v", err)
		}

		n, err := Normalize(withOrientation(buf.Bytes(), 6), DefaultMaxSide)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.Orientation != 6 {
			t.Errorf("expected orientation 6, got %d", n.Orientation)
		}
		if n.Width != 20 || n.Height != 40 {
			t.Errorf("expected 20x40 after rotation, got %dx%d", n.Width, n.Height)
		}
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Normalize([]byte("<html></html>"), DefaultMaxSide)
		if !errors.Is(err, ErrNotImage) {
			t.Errorf("expected ErrNotImage, got %v", err)
		}
	})
}

func TestOrient(t *testing.T) {
	t.Parallel()

	// 2x1 source: red at (0,0), blue at (1,0).
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	testCases := []struct {
		orientation int
		w, h        int
		redAt       image.Point
	}{
		{1, 2, 1, image.Pt(0, 0)},
		{2, 2, 1, image.Pt(1, 0)},
		{3, 2, 1, image.Pt(1, 0)},
		{4, 2, 1, image.Pt(0, 0)},
		{5, 1, 2, image.Pt(0, 0)},
		{6, 1, 2, image.Pt(0, 0)},
		{7, 1, 2, image.Pt(0, 1)},
		{8, 1, 2, image.Pt(0, 1)},
	}

	for _, tc := range testCases {
		t.Run(string(rune('0'+tc.orientation)), func(t *testing.T) {
			t.Parallel()

			out := orient(src, tc.orientation)
			if out.Bounds().Dx() != tc.w || out.Bounds().Dy() != tc.h {
				t.Fatalf("expected %dx%d, got %v", tc.w, tc.h, out.Bounds())
			}
			if got := out.RGBAAt(tc.redAt.X, tc.redAt.Y); got != red {
				t.Errorf("expected red at %v, got %v", tc.redAt, got)
			}
		})
	}
}

func TestFindPageImage(t *testing.T) {
	t.Parallel()

	base, err := url.Parse("https://example.com/p/abc/")
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		page     string
		expected string
		wantErr  error
	}{
		{
			name:     "og:image wins over img",
			page:     `<html><head><meta property="og:image" content="https://cdn.example.com/photo.jpg?a=1&amp;b=2"></head><body><img src="/other.jpg"></body></html>`,
			expected: "https://cdn.example.com/photo.jpg?a=1&b=2",
		},
		{
			name:     "twitter:image by name",
			page:     `<meta name="twitter:image" content="/media/x.png">`,
			expected: "https://example.com/media/x.png",
		},
		{
			name:     "first content img skipping logos and avatars",
			page:     `<img src="/static/logo.png"><img src="/u/avatar_1.jpg"><img src="photo.jpg"><img src="/second.jpg">`,
			expected: "https://example.com/p/abc/photo.jpg",
		},
		{
			name:    "only decorative images",
			page:    `<img src="/profile_pic.jpg"><img src="data:image/png;base64,AAAA">`,
			wantErr: ErrNoPageImage,
		},
		{
			name:    "non-http meta is ignored",
			page:    `<meta property="og:image" content="javascript:alert(1)">`,
			wantErr: ErrNoPageImage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := FindPageImage(strings.NewReader(tc.page), base)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("expected %v, got %v (%q)", tc.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestFetcher(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, _ *http.Request) {
		// Chunked: no Content-Length.
		w.(http.Flusher).Flush()
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := NewFetcher(srv.Client(), 1024)

	t.Run("returns the body and media type", func(t *testing.T) {
		t.Parallel()

		resp, err := f.Fetch(context.Background(), srv.URL+"/ok")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Body) != "png-bytes" || resp.ContentType != "image/png" {
			t.Errorf("unexpected response %q %q", resp.ContentType, resp.Body)
		}
	})

	t.Run("non-200 is a status error", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(context.Background(), srv.URL+"/missing")
		var fe *FetchError
		if !errors.As(err, &fe) || fe.Stage != StageStatus {
			t.Fatalf("expected a status FetchError, got %v", err)
		}
		if !errors.Is(err, ErrHTTPStatus) || !strings.Contains(err.Error(), "404") {
			t.Errorf("expected ErrHTTPStatus with 404, got %v", err)
		}
	})

	t.Run("oversized body is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(context.Background(), srv.URL+"/big")
		if !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		t.Parallel()

		_, err := f.Fetch(context.Background(), "file:///etc/passwd")
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("expected ErrUnsupportedScheme, got %v", err)
		}
	})
}

func TestFetchErrorRedactsURL(t *testing.T) {
	t.Parallel()

	err := &FetchError{URL: "https://cdn.example.com/a.jpg?oh=abc123&x=1", Stage: StageStatus, Err: ErrHTTPStatus}
	if strings.Contains(err.Error(), "abc123") {
		t.Errorf("expected the signature to be masked, got %q", err.Error())
	}
}

func TestResolver(t *testing.T) {
	t.Parallel()

	photo := encodePNG(t, solid(60, 80, color.Black))

	mux := http.NewServeMux()
	mux.HandleFunc("/photo.png", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/post", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="/photo.png"></head></html>`))
	})
	mux.HandleFunc("/empty-post", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>nothing</body></html>`))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	record := func(link string) model.VictimRecord {
		rec := model.VictimRecord{ID: "v1"}
		if link != "" {
			rec.Media = &model.Media{Photo: link}
		}
		return rec
	}

	newResolver := func(t *testing.T) *Resolver {
		t.Helper()
		return NewResolver(NewFetcher(srv.Client(), 1<<20), t.TempDir(), WithLogger(quietLogger()))
	}

	t.Run("direct image link", func(t *testing.T) {
		t.Parallel()

		r := newResolver(t)
		asset := r.Resolve(context.Background(), record(srv.URL+"/photo.png"), "v1")
		if !asset.Available() {
			t.Fatalf("expected an available asset, got %+v", asset)
		}
		if asset.Width != 60 || asset.Height != 80 {
			t.Errorf("expected 60x80, got %dx%d", asset.Width, asset.Height)
		}
		if _, err := os.Stat(asset.Path); err != nil {
			t.Errorf("expected the photo on disk: %v", err)
		}
	})

	t.Run("post page is followed one hop", func(t *testing.T) {
		t.Parallel()

		asset := newResolver(t).Resolve(context.Background(), record(srv.URL+"/post"), "v1")
		if !asset.Available() {
			t.Fatalf("expected an available asset, got %+v", asset)
		}
		if asset.Source != srv.URL+"/photo.png" {
			t.Errorf("expected source %s/photo.png, got %s", srv.URL, asset.Source)
		}
	})

	testCases := []struct {
		name   string
		link   string
		reason string
	}{
		{"no link", "", ReasonNoLink},
		{"http error", srv.URL + "/gone", "410"},
		{"page without image", srv.URL + "/empty-post", ErrNoPageImage.Error()},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			asset := newResolver(t).Resolve(context.Background(), record(tc.link), "v1")
			if asset.Available() || asset.Kind != model.AssetUnavailable {
				t.Fatalf("expected an unavailable asset, got %+v", asset)
			}
			if !strings.Contains(asset.Reason, tc.reason) {
				t.Errorf("expected reason to contain %q, got %q", tc.reason, asset.Reason)
			}
		})
	}

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		asset := newResolver(t).Resolve(ctx, record(srv.URL+"/photo.png"), "v1")
		if asset.Reason != ReasonCanceled {
			t.Errorf("expected %q, got %q", ReasonCanceled, asset.Reason)
		}
	})
}
