package scraper

import (
	"context"
	"log/slog"
	"strconv"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/logging"
)

// NullAdapter is the variant for backends that are not really implemented.
// It never touches the network and returns a copy of Samples, which may be empty.
type NullAdapter struct {
	Reason  string
	Samples []entity.RawArticle
}

// NewPlaceholderAdapter serves the catalog's canned sample articles for
// zero-config placeholder providers.
func NewPlaceholderAdapter(c *config.Catalog) *NullAdapter {
	samples := make([]entity.RawArticle, 0, len(c.PlaceholderArticles))
	for _, s := range c.PlaceholderArticles {
		samples = append(samples, s.Raw())
	}
	return &NullAdapter{Reason: "placeholder provider", Samples: samples}
}

// NewDisabledRSSAdapter stands in for RSS while feed ingestion is switched off.
func NewDisabledRSSAdapter() *NullAdapter {
	return &NullAdapter{Reason: "rss ingestion disabled"}
}

// Kind implements Adapter.
func (a *NullAdapter) Kind() AdapterKind { return AdapterNull }

// Fetch returns the samples attributed to src.
func (a *NullAdapter) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	logging.FromContext(ctx).Debug("null adapter serving source",
		slog.Int64("source_id", src.ID),
		slog.String("reason", a.Reason),
		slog.Int("samples", len(a.Samples)))

	out := make([]entity.RawArticle, len(a.Samples))
	copy(out, a.Samples)
	for i := range out {
		if out[i].SourceName == "" {
			out[i].SourceName = src.Name
		}
		if out[i].SourceID == "" {
			out[i].SourceID = strconv.FormatInt(src.ID, 10)
		}
	}
	return out, nil
}
