package fetcher

import "errors"

// Sentinel errors returned by the content fetcher and URL guard.
var (
	// ErrInvalidURL indicates a URL that is malformed or uses a forbidden scheme.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates a host that resolves to a private, loopback or link-local address.
	ErrPrivateIP = errors.New("URL resolves to private IP address")

	// ErrTooManyRedirects indicates the redirect limit was exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response exceeded the configured body limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout = errors.New("content fetch timeout")

	// ErrContentTooShort indicates readability found no usable text.
	ErrContentTooShort = errors.New("extracted content too short")
)
