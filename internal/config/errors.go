package config

import "errors"

// Validation errors returned by Config.Validate. Sentinel errors so
// callers can branch with errors.Is while the messages stay readable.
var (
	// ErrNoStoreURL is returned when the record store base URL is missing.
	// Every phase reads or writes the store; there is no offline mode.
	ErrNoStoreURL = errors.New("no store URL configured: set store_url or FUNERAL_STORE_URL")

	// ErrNoStoreCredentials is returned when the store identity or password
	// is missing from the environment.
	ErrNoStoreCredentials = errors.New("store credentials missing: set FUNERAL_STORE_IDENTITY and FUNERAL_STORE_PASSWORD")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxPages is returned when the page cap is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidConcurrency is returned when the collect concurrency is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidCrawlDelay is returned when the politeness delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")
)
