package asset

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Response is a downloaded body.
type Response struct {
	// URL is the final URL after redirects.
	URL *url.URL

	// ContentType is the media type without parameters. It is sniffed
	// from the body when the server sends none.
	ContentType string

	Body []byte
}

// IsHTML reports whether the body is a web page rather than an image.
func (r *Response) IsHTML() bool {
	return r.ContentType == "text/html" || r.ContentType == "application/xhtml+xml"
}

// Fetcher downloads photos and photo pages.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewFetcher creates a Fetcher. client carries the timeout, the User-Agent
// and the proxy; maxBytes caps every body.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	return &Fetcher{client: client, maxBytes: maxBytes}
}

// Fetch GETs rawURL. Anything but a complete 200 response within the size
// limit is a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &FetchError{URL: rawURL, Stage: StageRequest, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{URL: rawURL, Stage: StageRequest, Err: fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Stage: StageRequest, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Stage: StageRequest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: rawURL, Stage: StageStatus, Err: fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)}
	}
	if f.maxBytes > 0 && resp.ContentLength > f.maxBytes {
		return nil, &FetchError{URL: rawURL, Stage: StageRead, Err: fmt.Errorf("%w: %d bytes", ErrTooLarge, resp.ContentLength)}
	}

	body, err := f.read(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Stage: StageRead, Err: err}
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL
	}
	return &Response{URL: final, ContentType: contentType(resp.Header.Get("Content-Type"), body), Body: body}, nil
}

// read returns the whole body, or ErrTooLarge when it has more than
// maxBytes. Servers do not always send Content-Length.
func (f *Fetcher) read(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}
	return body, nil
}

func contentType(header string, body []byte) string {
	if header != "" {
		if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(body)) //nolint:errcheck // DetectContentType always returns a valid type
	return mt
}
