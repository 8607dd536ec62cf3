package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
	"localfeed/internal/infra/scraper"
)

const newsAPIBody = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {
      "source": {"id": "the-wire", "name": "The Wire"},
      "author": "Jane Doe",
      "title": "Markets rally after rate decision",
      "description": "Stocks climbed on Wednesday.",
      "url": "https://thewire.example/markets",
      "urlToImage": "https://thewire.example/markets.jpg",
      "publishedAt": "2026-02-01T10:00:00Z",
      "content": "Full text"
    },
    {
      "source": {"id": null, "name": "Other"},
      "author": null,
      "title": "Second story",
      "url": "https://other.example/second"
    }
  ]
}`

func testCatalog(t *testing.T) *config.Catalog {
	t.Helper()
	c, err := config.DefaultCatalog()
	require.NoError(t, err)
	return c
}

func fastLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestNewsAPIAdapter_Fetch_PerCategory(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []map[string]string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/top-headlines", r.URL.Path)
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, map[string]string{
			"apiKey":   q.Get("apiKey"),
			"category": q.Get("category"),
			"pageSize": q.Get("pageSize"),
			"language": q.Get("language"),
			"sortBy":   q.Get("sortBy"),
			"country":  q.Get("country"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	src := &entity.Source{
		ID:           1,
		Name:         "NewsAPI",
		Kind:         entity.SourceKindExternal,
		Endpoint:     server.URL + "/v2/",
		APIKey:       "secret",
		Categories:   []string{"business", "technology"},
		LocationBias: "United Kingdom",
	}

	items, err := a.Fetch(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, items, 4)
	require.Len(t, queries, 2)

	assert.Equal(t, "business", queries[0]["category"])
	assert.Equal(t, "technology", queries[1]["category"])
	for _, q := range queries {
		assert.Equal(t, "secret", q["apiKey"])
		assert.Equal(t, "20", q["pageSize"])
		assert.Equal(t, "en", q["language"])
		assert.Equal(t, "publishedAt", q["sortBy"])
		assert.Equal(t, "gb", q["country"])
	}

	first := items[0]
	assert.Equal(t, "The Wire", first.SourceName)
	assert.Equal(t, "the-wire", first.SourceID)
	assert.Equal(t, "Jane Doe", first.Author)
	assert.Equal(t, "https://thewire.example/markets.jpg", first.ImageURL)
	assert.Equal(t, "2026-02-01T10:00:00Z", first.PublishedAt)
	assert.Empty(t, items[1].Author)
}

func TestNewsAPIAdapter_Fetch_NoCategoriesNoBias(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.False(t, r.URL.Query().Has("category"))
		assert.False(t, r.URL.Query().Has("country"))
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	items, err := a.Fetch(context.Background(), &entity.Source{Name: "n", Endpoint: server.URL, APIKey: "k"})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 1, calls)
}

func TestNewsAPIAdapter_Fetch_UnknownBiasUsesDefaultCountry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us", r.URL.Query().Get("country"))
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	_, err := a.Fetch(context.Background(), &entity.Source{Endpoint: server.URL, APIKey: "k", LocationBias: "Atlantis"})
	require.NoError(t, err)
}

func TestNewsAPIAdapter_Fetch_NoAPIKeyIsDisabled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without an api key")
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	items, err := a.Fetch(context.Background(), &entity.Source{Endpoint: server.URL})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestNewsAPIAdapter_Fetch_StatusNotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"bad key"}`))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	items, err := a.Fetch(context.Background(), &entity.Source{Endpoint: server.URL, APIKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, scraper.ErrProviderStatus))
	assert.Empty(t, items)
}

func TestNewsAPIAdapter_Fetch_PartialFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") == "sports" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":"error","message":"nope"}`))
			return
		}
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	items, err := a.Fetch(context.Background(), &entity.Source{
		Endpoint:   server.URL,
		APIKey:     "k",
		Categories: []string{"sports", "health"},
	})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNewsAPIAdapter_Everything(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/everything", r.URL.Path)
		assert.Equal(t, "city council", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(newsAPIBody))
	}))
	defer server.Close()

	a := scraper.NewNewsAPIAdapter(server.Client(), testCatalog(t), fastLimiter())
	items, err := a.Everything(context.Background(), &entity.Source{Endpoint: server.URL, APIKey: "k"}, "city council")
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestNewsAPIAdapter_RespectsContextInLimiter(t *testing.T) {
	a := scraper.NewNewsAPIAdapter(http.DefaultClient, testCatalog(t), rate.NewLimiter(rate.Every(time.Hour), 0))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Fetch(ctx, &entity.Source{Endpoint: "http://unused.invalid", APIKey: "k"})
	require.Error(t, err)
}
