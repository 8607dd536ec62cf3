package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/logging"
	"localfeed/internal/resilience/circuitbreaker"
	"localfeed/internal/resilience/retry"
)

// RSSAdapter parses RSS and Atom feeds with gofeed.
type RSSAdapter struct {
	client  *http.Client
	breaker *circuitbreaker.Breaker
	policy  retry.Policy
}

// NewRSSAdapter creates an RSSAdapter with the given HTTP client.
func NewRSSAdapter(client *http.Client) *RSSAdapter {
	return &RSSAdapter{
		client:  client,
		breaker: circuitbreaker.New(circuitbreaker.Feed()),
		policy:  retry.Feed(),
	}
}

// Kind implements Adapter.
func (a *RSSAdapter) Kind() AdapterKind { return AdapterRSS }

// Fetch retrieves and parses the feed at the source endpoint.
func (a *RSSAdapter) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	var items []entity.RawArticle

	err := retry.Do(ctx, a.policy, a.breaker.Name(), func() error {
		var err error
		items, err = circuitbreaker.Do(a.breaker, func() ([]entity.RawArticle, error) {
			return a.doFetch(ctx, src)
		})
		if circuitbreaker.Rejected(err) {
			logging.FromContext(ctx).Warn("feed circuit breaker open, request rejected",
				slog.String("url", src.Endpoint),
				slog.String("state", a.breaker.State().String()))
		}
		return err
	})
	if err != nil {
		return []entity.RawArticle{}, err
	}
	return items, nil
}

func (a *RSSAdapter) doFetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = UserAgent
	fp.Client = a.client

	feed, err := fp.ParseURLWithContext(src.Endpoint, ctx)
	var statusErr gofeed.HTTPError
	if errors.As(err, &statusErr) {
		return nil, &retry.HTTPError{StatusCode: statusErr.StatusCode, Status: statusErr.Status}
	}
	if err != nil {
		return nil, err
	}

	items := make([]entity.RawArticle, 0, len(feed.Items))
	for _, it := range feed.Items {
		raw := entity.RawArticle{
			SourceName:  src.Name,
			Title:       it.Title,
			Description: it.Description,
			URL:         it.Link,
			Content:     it.Content,
			PublishedAt: it.Published,
		}
		if it.PublishedParsed != nil {
			raw.PublishedAt = it.PublishedParsed.UTC().Format(time.RFC3339)
		}
		if it.Author != nil {
			raw.Author = it.Author.Name
		} else if len(it.Authors) > 0 && it.Authors[0] != nil {
			raw.Author = it.Authors[0].Name
		}
		if it.Image != nil {
			raw.ImageURL = it.Image.URL
		}
		items = append(items, raw)
	}
	return items, nil
}
