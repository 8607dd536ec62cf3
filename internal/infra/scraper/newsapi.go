package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/logging"
)

// DefaultPageSize is the page size requested from keyed providers.
const DefaultPageSize = 20

// NewsAPIAdapter talks to NewsAPI-style keyed endpoints.
type NewsAPIAdapter struct {
	http    jsonClient
	catalog *config.Catalog
	limiter *rate.Limiter
}

// NewNewsAPIAdapter creates the keyed adapter. limiter paces outbound
// requests across all keyed sources; nil means 5 requests per second.
func NewNewsAPIAdapter(client *http.Client, catalog *config.Catalog, limiter *rate.Limiter) *NewsAPIAdapter {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
	}
	return &NewsAPIAdapter{
		http:    newJSONClient(client, "newsapi"),
		catalog: catalog,
		limiter: limiter,
	}
}

// Kind implements Adapter.
func (a *NewsAPIAdapter) Kind() AdapterKind { return AdapterKeyed }

// Fetch issues one top-headlines request per declared category, or a single
// request when none are declared. A source without an API key is disabled
// and yields nothing. Failed categories are skipped; an error is returned
// only when every request failed.
func (a *NewsAPIAdapter) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	logger := logging.FromContext(ctx)
	if src.APIKey == "" {
		logger.Debug("keyed source has no api key, skipping",
			slog.Int64("source_id", src.ID))
		return []entity.RawArticle{}, nil
	}

	categories := src.Categories
	if len(categories) == 0 {
		categories = []string{""}
	}

	var (
		articles []entity.RawArticle
		errs     []error
	)
	for _, category := range categories {
		q := a.baseQuery(src)
		if category != "" {
			q.Set("category", category)
		}
		if src.LocationBias != "" {
			q.Set("country", a.catalog.CountryCode(src.LocationBias))
		}

		items, err := a.request(ctx, src, "top-headlines", q)
		if err != nil {
			logger.Warn("keyed request failed",
				slog.Int64("source_id", src.ID),
				slog.String("category", category),
				slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		articles = append(articles, items...)
	}

	if len(errs) == len(categories) {
		return []entity.RawArticle{}, errors.Join(errs...)
	}
	if articles == nil {
		articles = []entity.RawArticle{}
	}
	return articles, nil
}

// Everything runs a free-text search against the provider's /everything endpoint.
func (a *NewsAPIAdapter) Everything(ctx context.Context, src *entity.Source, query string) ([]entity.RawArticle, error) {
	if src.APIKey == "" {
		return []entity.RawArticle{}, nil
	}
	q := a.baseQuery(src)
	q.Set("q", query)
	return a.request(ctx, src, "everything", q)
}

func (a *NewsAPIAdapter) baseQuery(src *entity.Source) url.Values {
	q := url.Values{}
	q.Set("apiKey", src.APIKey)
	q.Set("pageSize", strconv.Itoa(DefaultPageSize))
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	return q
}

func (a *NewsAPIAdapter) request(ctx context.Context, src *entity.Source, path string, q url.Values) ([]entity.RawArticle, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := strings.TrimRight(src.Endpoint, "/") + "/" + path + "?" + q.Encode()
	body, err := a.http.get(ctx, endpoint, nil)
	if err != nil {
		if msg := gjson.GetBytes(body, "message").String(); msg != "" {
			return nil, fmt.Errorf("%s: %w (%s)", path, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s: invalid JSON response", path)
	}

	res := gjson.ParseBytes(body)
	if status := res.Get("status").String(); status != "ok" {
		return nil, fmt.Errorf("%w: status=%q message=%q", ErrProviderStatus, status, res.Get("message").String())
	}
	return mapItems(res.Get("articles").Array(), src.Name), nil
}
