package scraper

import (
	"net/http"

	"golang.org/x/time/rate"

	"localfeed/internal/config"
	"localfeed/internal/repository"
)

// FactoryOptions tunes the adapters built by Factory.
type FactoryOptions struct {
	RSSEnabled       bool
	CommunityBaseURL string
	CommunityLimit   int
	// KeyedLimiter paces keyed provider requests; nil selects the default.
	KeyedLimiter *rate.Limiter
}

// Factory creates adapters with consistent HTTP configuration.
type Factory struct {
	client  *http.Client
	catalog *config.Catalog
}

// NewFactory creates a Factory. The client should carry timeouts and
// redirect validation.
func NewFactory(client *http.Client, catalog *config.Catalog) *Factory {
	return &Factory{client: client, catalog: catalog}
}

// CreateAdapters builds one adapter per backend family. A nil community
// repository leaves local sources unroutable.
func (f *Factory) CreateAdapters(community repository.CommunityRepository, opts FactoryOptions) Adapters {
	adapters := Adapters{
		Keyed:       NewNewsAPIAdapter(f.client, f.catalog, opts.KeyedLimiter),
		Generic:     NewGenericJSONAdapter(f.client),
		Placeholder: NewPlaceholderAdapter(f.catalog),
		RSS:         NewDisabledRSSAdapter(),
	}
	if community != nil {
		adapters.Community = NewCommunityAdapter(community, opts.CommunityBaseURL, opts.CommunityLimit)
	}
	if opts.RSSEnabled {
		adapters.RSS = NewRSSAdapter(f.client)
	}
	return adapters
}

// CreateRouter builds all adapters and wraps them in a Router.
func (f *Factory) CreateRouter(community repository.CommunityRepository, opts FactoryOptions) *Router {
	return NewRouter(f.CreateAdapters(community, opts), f.catalog.Providers)
}
