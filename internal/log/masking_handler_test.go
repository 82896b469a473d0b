package log

import (
	"bytes"
	"strings"
	"testing"
)

// TestMaskingByKey tests key-based attribute masking.
func TestMaskingByKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"password", "password"},
		{"composite password", "store_password"},
		{"secret", "ocr_secret"},
		{"token", "access_token"},
		{"webhook url", "notice_webhook_url"},
		{"authorization", "Authorization"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := New(&buf, false)
			logger.Info("store login", tt.key, "hunter2-super-secret")

			out := buf.String()
			if strings.Contains(out, "hunter2-super-secret") {
				t.Errorf("secret value leaked: %s", out)
			}
			if !strings.Contains(out, MaskValue) {
				t.Errorf("mask marker missing: %s", out)
			}
		})
	}
}

// TestMaskingByValueShape tests value-shape masking for secret formats.
func TestMaskingByValueShape(t *testing.T) {
	t.Parallel()

	t.Run("jwt value is masked under any key", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, false)
		logger.Info("request", "header", "eyJhbGciOiJIUzI1NiJ9.eyJpZCI6IjEifQ.sig")

		if strings.Contains(buf.String(), "eyJhbGci") {
			t.Errorf("jwt leaked: %s", buf.String())
		}
	})

	t.Run("bearer value is masked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := New(&buf, false)
		logger.Info("request", "header", "Bearer abc123")

		if strings.Contains(buf.String(), "abc123") {
			t.Errorf("bearer value leaked: %s", buf.String())
		}
	})
}

// TestContentHashStaysReadable tests that long hex identifiers are not
// treated as secrets; the pipeline logs content hashes constantly.
func TestContentHashStaysReadable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, false)
	hash := "3d2c1b0a9f8e7d6c5b4a39281706f5e4d3c2b1a09f8e7d6c5b4a392817065f4e"
	logger.Info("analyzed row present", "content_hash", hash)

	if !strings.Contains(buf.String(), hash) {
		t.Errorf("content hash masked, expected readable: %s", buf.String())
	}
}

// TestPlainAttrsPassThrough tests that ordinary attributes are untouched.
func TestPlainAttrsPassThrough(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Info("crawl done", "district", "북구", "items", 4)

	out := buf.String()
	if !strings.Contains(out, "북구") || !strings.Contains(out, "items=4") {
		t.Errorf("plain attributes mangled: %s", out)
	}
	if strings.Contains(out, MaskValue) {
		t.Errorf("unexpected masking: %s", out)
	}
}

// TestWithAttrsMasks tests masking of pre-attached attributes.
func TestWithAttrsMasks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(&buf, false).With("api_key", "key-123")
	logger.Info("ready")

	if strings.Contains(buf.String(), "key-123") {
		t.Errorf("pre-attached secret leaked: %s", buf.String())
	}
}

// TestVerboseLevel tests debug-level gating.
func TestVerboseLevel(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	New(&quiet, false).Debug("pagination bound derived")
	if quiet.Len() != 0 {
		t.Errorf("debug output without verbose: %s", quiet.String())
	}

	var loud bytes.Buffer
	New(&loud, true).Debug("pagination bound derived")
	if loud.Len() == 0 {
		t.Error("no debug output with verbose")
	}
}

// TestNewJSON tests that the JSON logger masks too.
func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSON(&buf, false)
	logger.Info("store login", "password", "hunter2")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("secret leaked in json output: %s", out)
	}
	if !strings.Contains(out, `"msg":"store login"`) {
		t.Errorf("json shape unexpected: %s", out)
	}
}
