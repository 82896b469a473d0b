package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moah0o0/public-funeral-scrapper/internal/model"
)

func rawItem() model.RawItem {
	return model.RawItem{
		ID:           "raw-1",
		District:     "북구",
		URL:          "https://example.org/view?idx=1",
		Content:      "고인 홍길동 발인 8월 3일",
		EditionIndex: 1,
	}
}

// TestAnalyze tests the request shape and response decoding.
func TestAnalyze(t *testing.T) {
	t.Parallel()

	t.Run("fields decode from the response", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		var gotPayload map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"name":"홍길동","funeral_place":"부산영락공원"}`)) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "key-123", WithHTTPClient(srv.Client()))
		fields, err := c.Analyze(context.Background(), rawItem())
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		if fields.Name != "홍길동" || fields.FuneralPlace != "부산영락공원" {
			t.Errorf("fields = %+v", fields)
		}

		if gotAuth != "Bearer key-123" {
			t.Errorf("Authorization = %q, expected Bearer token", gotAuth)
		}
		if gotPayload["content"] != "고인 홍길동 발인 8월 3일" {
			t.Errorf("payload content = %v", gotPayload["content"])
		}
		if gotPayload["update_count"] != float64(1) {
			t.Errorf("payload update_count = %v, expected 1", gotPayload["update_count"])
		}
	})

	t.Run("empty endpoint is not configured", func(t *testing.T) {
		t.Parallel()

		c := NewClient("", "")
		if _, err := c.Analyze(context.Background(), rawItem()); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("Analyze error = %v, expected ErrNotConfigured", err)
		}
	})

	t.Run("rejected analysis fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "key-123", WithHTTPClient(srv.Client()))
		if _, err := c.Analyze(context.Background(), rawItem()); err == nil {
			t.Error("Analyze succeeded against a rejecting service")
		}
	})

	t.Run("malformed response fails", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json")) //nolint:errcheck
		}))
		t.Cleanup(srv.Close)

		c := NewClient(srv.URL, "", WithHTTPClient(srv.Client()))
		if _, err := c.Analyze(context.Background(), rawItem()); err == nil {
			t.Error("Analyze accepted a malformed response")
		}
	})
}
