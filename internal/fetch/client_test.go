package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

// TestFetchDirect tests the plain retrieval path.
func TestFetchDirect(t *testing.T) {
	t.Parallel()

	t.Run("body and status are returned", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ua := r.Header.Get("User-Agent"); ua != DefaultUserAgent {
				t.Errorf("User-Agent = %q", ua)
			}
			w.Write([]byte("<html>목록</html>")) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client())
		res, err := c.Get(context.Background(), srv.URL, false)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if res.StatusCode != http.StatusOK {
			t.Errorf("StatusCode = %d", res.StatusCode)
		}
		if res.Text() != "<html>목록</html>" {
			t.Errorf("Text() = %q", res.Text())
		}
		if res.ViaTor {
			t.Error("ViaTor = true on a direct fetch")
		}
	})

	t.Run("form posts are url-encoded", func(t *testing.T) {
		t.Parallel()

		var gotPage string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
				t.Errorf("Content-Type = %q", ct)
			}
			if err := r.ParseForm(); err != nil {
				t.Errorf("parse form: %v", err)
			}
			gotPage = r.PostFormValue("page")
			w.Write([]byte("ok")) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client())
		form := url.Values{}
		form.Set("page", "3")
		if _, err := c.Post(context.Background(), srv.URL, form, false); err != nil {
			t.Fatalf("Post: %v", err)
		}
		if gotPage != "3" {
			t.Errorf("posted page = %q, expected 3", gotPage)
		}
	})

	t.Run("body is capped at the configured size", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write(make([]byte, 4096)) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client(), WithMaxBodySize(100))
		res, err := c.Get(context.Background(), srv.URL, false)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(res.Body) != 100 {
			t.Errorf("len(Body) = %d, expected 100", len(res.Body))
		}
	})

	t.Run("plain client error is not retried", func(t *testing.T) {
		t.Parallel()

		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		t.Cleanup(srv.Close)

		// A Tor client is configured, but 404 is not block-shaped.
		c := NewClient(srv.Client(), WithTorClient(srv.Client()))
		_, err := c.Get(context.Background(), srv.URL, false)

		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
			t.Fatalf("error = %v, expected StatusError 404", err)
		}
		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("requests = %d, expected 1 (no failover)", got)
		}
	})
}

// TestFetchTorFailover tests the block-shaped failover path.
func TestFetchTorFailover(t *testing.T) {
	t.Parallel()

	t.Run("blocked direct request fails over to tor", func(t *testing.T) {
		t.Parallel()

		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte("부고 목록")) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client(), WithTorClient(srv.Client()))
		res, err := c.Get(context.Background(), srv.URL, false)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !res.ViaTor {
			t.Error("ViaTor = false, expected the failover attempt marked")
		}
		if got := atomic.LoadInt32(&calls); got != 2 {
			t.Errorf("requests = %d, expected 2", got)
		}
	})

	t.Run("blocked without tor client returns the block error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client())
		_, err := c.Get(context.Background(), srv.URL, false)
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("error = %v, expected StatusError 503", err)
		}
	})

	t.Run("force tor without tor client refuses", func(t *testing.T) {
		t.Parallel()

		c := NewClient(&http.Client{})
		_, err := c.Get(context.Background(), "https://example.org", true)
		if !errors.Is(err, ErrNoTorClient) {
			t.Errorf("error = %v, expected ErrNoTorClient", err)
		}
	})

	t.Run("force tor skips the direct client", func(t *testing.T) {
		t.Parallel()

		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.Write([]byte("ok")) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		// The "direct" client would fail loudly if used.
		broken := &http.Client{Timeout: time.Nanosecond}
		c := NewClient(broken, WithTorClient(srv.Client()))
		res, err := c.Get(context.Background(), srv.URL, true)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !res.ViaTor {
			t.Error("ViaTor = false on a forced-Tor fetch")
		}
		if got := atomic.LoadInt32(&calls); got != 1 {
			t.Errorf("requests = %d, expected 1", got)
		}
	})

	t.Run("exhausted tor retries wrap the budget error", func(t *testing.T) {
		t.Parallel()

		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.Client(), WithTorClient(srv.Client()), WithTorRetries(3))
		_, err := c.Get(context.Background(), srv.URL, false)
		if !errors.Is(err, ErrRetryBudgetExhausted) {
			t.Fatalf("error = %v, expected ErrRetryBudgetExhausted", err)
		}
		// One direct attempt plus three Tor attempts.
		if got := atomic.LoadInt32(&calls); got != 4 {
			t.Errorf("requests = %d, expected 4", got)
		}
	})
}

// TestNewTorHTTPClient tests proxy address validation.
func TestNewTorHTTPClient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		address string
		valid   bool
	}{
		{"standard socks address", "127.0.0.1:9050", true},
		{"hostname address", "tor.internal:9150", true},
		{"missing port", "127.0.0.1", false},
		{"missing host", ":9050", false},
		{"port out of range", "127.0.0.1:70000", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewTorHTTPClient(tt.address, 10*time.Second)
			if tt.valid {
				if err != nil {
					t.Errorf("NewTorHTTPClient(%q) = %v", tt.address, err)
				}
				if client == nil {
					t.Error("client = nil")
				}
				return
			}
			if !errors.Is(err, ErrInvalidProxyAddress) {
				t.Errorf("NewTorHTTPClient(%q) error = %v, expected ErrInvalidProxyAddress", tt.address, err)
			}
		})
	}
}
