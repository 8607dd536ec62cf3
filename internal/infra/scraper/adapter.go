// Package scraper turns a configured source into raw articles. One adapter
// exists per backend family; Router picks the adapter for a source.
package scraper

import (
	"context"
	"errors"

	"localfeed/internal/domain/entity"
)

// AdapterKind enumerates the adapter variants.
type AdapterKind string

const (
	// AdapterKeyed is the credentialed NewsAPI-style adapter.
	AdapterKeyed AdapterKind = "keyed"
	// AdapterGeneric tolerates several JSON envelope shapes.
	AdapterGeneric AdapterKind = "generic"
	// AdapterCommunity maps first-party posts, events and reviews.
	AdapterCommunity AdapterKind = "community"
	// AdapterRSS parses RSS and Atom feeds.
	AdapterRSS AdapterKind = "rss"
	// AdapterNull never touches the network. It stands in for backends that
	// are not really implemented.
	AdapterNull AdapterKind = "null"
)

var (
	// ErrUnexpectedEnvelope means a JSON response matched none of the known shapes.
	ErrUnexpectedEnvelope = errors.New("unexpected response envelope")

	// ErrProviderStatus means the provider answered with a non-ok status field.
	ErrProviderStatus = errors.New("provider returned error status")
)

// Adapter fetches raw articles for a source.
type Adapter interface {
	Kind() AdapterKind
	Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error)
}
