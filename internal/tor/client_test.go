package tor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewClient tests the Client constructor.
func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("valid proxy address creates client", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 30*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q, expected %q", client.ProxyAddress(), "127.0.0.1:9050")
		}
	})

	t.Run("invalid address returns ErrInvalidProxyAddress", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient("127.0.0.1", 30*time.Second)
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

// TestIsValidProxyAddress tests the proxy address validation function.
func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:9150", true},
		{"valid IPv6 with port", "[::1]:9050", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:70000", false},
		{"non-numeric port", "127.0.0.1:tor", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"url instead of address", "socks5://127.0.0.1:9050", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := isValidProxyAddress(tc.address)
			if result != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, result, tc.expected)
			}
		})
	}
}

// TestProxyStatus tests the status strings and errors.
func TestProxyStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		status  ProxyStatus
		str     string
		wantErr error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()
			if tc.status.String() != tc.str {
				t.Errorf("String() = %q, expected %q", tc.status.String(), tc.str)
			}
			if !errors.Is(tc.status.Error(), tc.wantErr) {
				t.Errorf("Error() = %v, expected %v", tc.status.Error(), tc.wantErr)
			}
		})
	}
}

// serveOnce starts a TCP listener that hands its first connection to handle.
func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return listener.Addr().String()
}

func TestCheckConnection(t *testing.T) {
	t.Parallel()

	t.Run("returns CannotConnect for non-existent proxy", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:59999", 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for HTTP server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		})

		client, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType for SOCKS5 requiring auth", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})

		client, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for SOCKS5 proxy replying with a failure code", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			connectBuf := make([]byte, 256)
			_, _ = conn.Read(connectBuf)
			// Host unreachable still proves the proxy processed the request.
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		client, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns WrongType for wrong version in CONNECT response", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})

			connectBuf := make([]byte, 256)
			_, _ = conn.Read(connectBuf)
			_, _ = conn.Write([]byte{0x04, 0x00, 0x00, 0x01})
		})

		client, err := NewClient(addr, 30*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if status := client.CheckConnection(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})
}

func TestDialContextUnreachableProxy(t *testing.T) {
	t.Parallel()

	client, err := NewClient("127.0.0.1:59997", 30*time.Second)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := client.DialContext(ctx, "tcp", "example.com:80"); err == nil {
		t.Error("expected error dialing through a proxy that is not running")
	}
}

func TestHTTPClients(t *testing.T) {
	t.Parallel()

	t.Run("direct client sends user agent", func(t *testing.T) {
		t.Parallel()

		headers := make(chan http.Header, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers <- r.Header.Clone()
		}))
		defer srv.Close()

		client := DirectHTTPClient(5*time.Second, "Mozilla/5.0")
		resp, err := client.Get(srv.URL) //nolint:noctx // test code
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		h := <-headers
		gotUA, gotAccept := h.Get("User-Agent"), h.Get("Accept")
		if gotUA != "Mozilla/5.0" {
			t.Errorf("expected User-Agent Mozilla/5.0, got %q", gotUA)
		}
		if gotAccept == "" {
			t.Error("expected a default Accept header")
		}
	})

	t.Run("redirect chains are capped", func(t *testing.T) {
		t.Parallel()

		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, srv.URL+r.URL.Path+"x", http.StatusFound)
		}))
		defer srv.Close()

		client := DirectHTTPClient(5*time.Second, "")
		resp, err := client.Get(srv.URL + "/") //nolint:noctx // test code
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected the last redirect to be returned, got %d", resp.StatusCode)
		}
	})

	t.Run("proxied client carries the configured timeout", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient("127.0.0.1:9050", 7*time.Second)
		if err != nil {
			t.Fatalf("failed to create client: %v", err)
		}
		if got := client.NewHTTPClient("ua").Timeout; got != 7*time.Second {
			t.Errorf("expected timeout 7s, got %v", got)
		}
	})
}
