// Package log builds the application's slog loggers. Every logger wraps
// its output handler in a masking handler so store tokens, OCR secrets,
// and webhook credentials never reach the log stream, whichever component
// logged them.
package log
