// Package source provides administrative use cases for ingestion sources:
// registering, updating, deleting and validating their configuration.
// The ingestion pipeline itself never calls into this package.
package source

import "errors"

// Sentinel errors for source use case operations.
var (
	// ErrSourceNotFound indicates that the requested source was not found.
	ErrSourceNotFound = errors.New("source not found")

	// ErrInvalidSourceConfig indicates that the source's configuration
	// report contains at least one error. The wrapped ValidationError names
	// the first offending field.
	ErrInvalidSourceConfig = errors.New("invalid source configuration")

	// ErrDuplicateSource indicates that a source with the same name already exists.
	ErrDuplicateSource = errors.New("source with this name already exists")
)
