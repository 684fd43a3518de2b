package tor

import (
	"net/http"
	"net/http/cookiejar"
	"time"
)

// maxRedirects caps redirect chains. CDN links redirect once or twice.
const maxRedirects = 10

// DirectHTTPClient returns the HTTP client used when no proxy is configured.
func DirectHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return newHTTPClient(transport, timeout, userAgent)
}

// newHTTPClient wraps base with the User-Agent header, a cookie jar and a
// redirect limit. Social networks set a consent cookie on the first
// response and expect it back on the redirect that follows.
func newHTTPClient(base http.RoundTripper, timeout time.Duration, userAgent string) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &headerTransport{base: base, userAgent: userAgent},
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// headerTransport sets the User-Agent and a default Accept header on every
// request, redirects included.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "image/*,text/html;q=0.8,*/*;q=0.5")
	}
	return t.base.RoundTrip(clone)
}
