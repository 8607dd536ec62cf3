package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/logging"
	"localfeed/internal/observability/metrics"
)

// Adapters holds one adapter per backend family.
type Adapters struct {
	Keyed       Adapter
	Generic     Adapter
	Placeholder Adapter
	Community   Adapter
	RSS         Adapter
}

// Router dispatches a source to its adapter.
type Router struct {
	adapters Adapters
	hosts    entity.ProviderHosts
}

// NewRouter creates a Router. hosts is used only for sources stored
// without a resolved provider.
func NewRouter(adapters Adapters, hosts entity.ProviderHosts) *Router {
	return &Router{adapters: adapters, hosts: hosts}
}

// Resolve returns the adapter for src.
func (r *Router) Resolve(src *entity.Source) (Adapter, error) {
	provider := src.Provider
	if provider == "" {
		provider = entity.ResolveProvider(src.Kind, src.Endpoint, r.hosts)
	}

	var a Adapter
	switch src.Kind {
	case entity.SourceKindLocal:
		a = r.adapters.Community
	case entity.SourceKindRSS:
		a = r.adapters.RSS
	case entity.SourceKindExternal:
		switch provider {
		case entity.ProviderNewsAPI:
			a = r.adapters.Keyed
		case entity.ProviderPlaceholder:
			a = r.adapters.Placeholder
		case entity.ProviderGenericJSON:
			a = r.adapters.Generic
		default:
			return nil, fmt.Errorf("provider %q is not valid for kind %q", provider, src.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
	if a == nil {
		return nil, fmt.Errorf("no adapter configured for kind %q provider %q", src.Kind, provider)
	}
	return a, nil
}

// Fetch fetches raw articles for src. It never panics and never returns a
// nil slice: on failure it logs, returns an empty slice and the error so
// the caller can count it.
func (r *Router) Fetch(ctx context.Context, src *entity.Source) (articles []entity.RawArticle, err error) {
	logger := logging.FromContext(ctx).With(
		slog.Int64("source_id", src.ID),
		slog.String("source_name", src.Name))

	adapter, err := r.Resolve(src)
	if err != nil {
		logger.Warn("source cannot be routed", slog.Any("error", err))
		return []entity.RawArticle{}, err
	}
	kind := string(adapter.Kind())
	logger = logger.With(slog.String("adapter", kind))

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("adapter %s panicked: %v", kind, rec)
		}
		if err != nil {
			logger.Warn("source fetch failed", slog.Any("error", err))
			articles = []entity.RawArticle{}
		}
		if articles == nil {
			articles = []entity.RawArticle{}
		}
		metrics.RecordSourceFetch(kind, time.Since(start), err)
	}()

	return adapter.Fetch(logging.WithLogger(ctx, logger), src)
}
