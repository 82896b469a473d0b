package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// maskedKeys are attribute keys whose values are always masked. The run
// carries three kinds of secrets: store credentials, the OCR secret, and
// webhook URLs with embedded tokens.
var maskedKeys = map[string]bool{
	"authorization": true,
	"cookie":        true,
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"webhook":       true,
	"webhook_url":   true,
	"credential":    true,
	"credentials":   true,
}

// maskedValuePatterns match secret-shaped values regardless of key name.
// Deliberately narrow: content hashes are long hex strings and must stay
// readable, so there is no generic long-string rule here.
var maskedValuePatterns = []*regexp.Regexp{
	// JWT, the store's token format.
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and basic authorization values.
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Private key material.
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// MaskValue replaces masked attribute values.
const MaskValue = "***REDACTED***"

// MaskingHandler wraps an slog.Handler and masks secret-bearing
// attributes before they reach it. Works in front of any handler, so the
// same masking covers text logs, JSON logs, and the Tor library's logger.
type MaskingHandler struct {
	handler slog.Handler
}

// NewMaskingHandler wraps handler; nil falls back to the default handler.
func NewMaskingHandler(handler slog.Handler) *MaskingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &MaskingHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *MaskingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and forwards it.
func (h *MaskingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks the attributes before attaching them.
func (h *MaskingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		maskedAttrs[i] = h.maskAttr(a)
	}
	return &MaskingHandler{handler: h.handler.WithAttrs(maskedAttrs)}
}

// WithGroup delegates to the underlying handler.
func (h *MaskingHandler) WithGroup(name string) slog.Handler {
	return &MaskingHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks one attribute, recursing into groups.
func (h *MaskingHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		maskedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			maskedAttrs[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(maskedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if maskedKeys[keyLower] || containsSecretKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSecretShaped(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// containsSecretKeyword matches composite keys like store_password or
// ocr_secret. The bare word "key" is excluded; it appears in innocent keys
// like primary_key.
func containsSecretKeyword(key string) bool {
	for _, keyword := range []string{"password", "passwd", "secret", "token", "credential", "webhook"} {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSecretShaped(value string) bool {
	for _, pattern := range maskedValuePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// New creates a text logger with masking. verbose selects debug level;
// the default level is info because the pipeline narrates its phases.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewMaskingHandler(handler))
}

// NewJSON creates a JSON logger with masking, for aggregated deployments.
func NewJSON(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewMaskingHandler(handler))
}
