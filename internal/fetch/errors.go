package fetch

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the Tor proxy address is not
	// in "host:port" form.
	ErrInvalidProxyAddress = errors.New("invalid Tor proxy address: must be host:port")

	// ErrNoTorClient is returned when a request needs the Tor path but no
	// proxy was configured.
	ErrNoTorClient = errors.New("tor retrieval requested but no Tor proxy configured")

	// ErrRetryBudgetExhausted is returned after the direct attempt and all
	// Tor retries have failed.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
)
