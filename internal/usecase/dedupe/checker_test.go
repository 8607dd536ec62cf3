package dedupe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
	"localfeed/internal/usecase/normalize"
)

type stubStore struct {
	urls       map[string]bool
	titleKeys  map[string]bool
	urlErr     error
	titleErr   error
	gotWindow  time.Duration
	batchCalls int
}

func (s *stubStore) ExistsByURLBatch(_ context.Context, urls []string) (map[string]bool, error) {
	s.batchCalls++
	if s.urlErr != nil {
		return nil, s.urlErr
	}
	out := make(map[string]bool, len(urls))
	for _, u := range urls {
		out[u] = s.urls[u]
	}
	return out, nil
}

func (s *stubStore) ExistsByTitleWithin(_ context.Context, _ int64, key string, window time.Duration) (bool, error) {
	s.gotWindow = window
	if s.titleErr != nil {
		return false, s.titleErr
	}
	return s.titleKeys[key], nil
}

func newTestNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	c, err := config.DefaultCatalog()
	require.NoError(t, err)
	return normalize.New(c)
}

func TestChecker_Filter(t *testing.T) {
	store := &stubStore{
		urls:      map[string]bool{"https://example.com/old": true},
		titleKeys: map[string]bool{"council meets tonight": true},
	}
	c := NewChecker(store, newTestNormalizer(t), 0)
	src := &entity.Source{ID: 1}

	raws := []entity.RawArticle{
		{Title: "Fresh one", URL: "https://example.com/new"},
		{Title: "Stored already", URL: "example.com/old"},
		{Title: "Same url again", URL: "https://example.com/new"},
		{Title: "BREAKING: Council meets tonight!", URL: "https://example.com/other"},
		{Title: "", URL: ""},
		{Title: "", URL: ""},
	}

	res, err := c.Filter(context.Background(), src, raws)
	require.NoError(t, err)

	assert.Equal(t, []entity.RawArticle{raws[0], raws[4], raws[5]}, res.Fresh)
	assert.Equal(t, 2, res.URLDuplicates)
	assert.Equal(t, 1, res.TitleDuplicates)
	assert.Equal(t, 3, res.Duplicates())
	assert.Equal(t, DefaultWindow, store.gotWindow)
	assert.Equal(t, 1, store.batchCalls)
}

func TestChecker_Filter_Empty(t *testing.T) {
	store := &stubStore{}
	c := NewChecker(store, newTestNormalizer(t), time.Hour)

	res, err := c.Filter(context.Background(), &entity.Source{}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Fresh)
	assert.Zero(t, store.batchCalls)
}

func TestChecker_Filter_StoreErrors(t *testing.T) {
	n := newTestNormalizer(t)
	raws := []entity.RawArticle{{Title: "Something", URL: "https://example.com/a"}}

	_, err := NewChecker(&stubStore{urlErr: errors.New("db down")}, n, 0).Filter(context.Background(), &entity.Source{}, raws)
	assert.ErrorContains(t, err, "check urls")

	_, err = NewChecker(&stubStore{titleErr: errors.New("db down")}, n, 0).Filter(context.Background(), &entity.Source{}, raws)
	assert.ErrorContains(t, err, "check title")
}
