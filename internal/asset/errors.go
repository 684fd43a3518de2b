package asset

import (
	"errors"
	"fmt"

	"github.com/iranrevolution2026/posters/internal/log"
)

// Sentinel errors wrapped by FetchError.
var (
	// ErrUnsupportedScheme is returned for links that are not http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")

	// ErrHTTPStatus is returned for any response other than 200 OK.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrTooLarge is returned when the body exceeds the size limit.
	ErrTooLarge = errors.New("response body too large")

	// ErrNoPageImage is returned when a web page has no usable image.
	ErrNoPageImage = errors.New("no image found on page")

	// ErrNotImage is returned when the bytes are not a decodable image.
	ErrNotImage = errors.New("not a supported image")
)

// Stages of a photo resolution, used in FetchError.
const (
	StageRequest  = "request"
	StageStatus   = "status"
	StageRead     = "read"
	StageDiscover = "discover"
	StageDecode   = "decode"
	StageWrite    = "write"
)

// FetchError describes why a photo could not be used.
type FetchError struct {
	URL   string
	Stage string
	Err   error
}

// Error masks signed query parameters so the message can be logged and
// written to reports.
func (e *FetchError) Error() string {
	u := e.URL
	if redacted, ok := log.RedactURL(u); ok {
		u = redacted
	}
	return fmt.Sprintf("%s %s: %v", e.Stage, u, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}
