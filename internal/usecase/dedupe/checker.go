// Package dedupe decides which freshly fetched articles are already stored.
package dedupe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"localfeed/internal/domain/entity"
	"localfeed/internal/usecase/normalize"
)

// DefaultWindow is the trailing window for same-source title matches.
const DefaultWindow = 24 * time.Hour

// Store is the subset of the article store used for duplicate checks.
type Store interface {
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	ExistsByTitleWithin(ctx context.Context, sourceID int64, titleKey string, window time.Duration) (bool, error)
}

// Result partitions a fetched batch.
type Result struct {
	Fresh           []entity.RawArticle
	URLDuplicates   int
	TitleDuplicates int
}

// Duplicates is the total number of articles dropped.
func (r Result) Duplicates() int {
	return r.URLDuplicates + r.TitleDuplicates
}

// Checker flags an article as a duplicate when its normalized URL is
// already stored or repeated earlier in the batch, or when the same source
// stored an article with the same canonical title inside the window.
type Checker struct {
	store      Store
	normalizer *normalize.Normalizer
	window     time.Duration
}

// NewChecker returns a Checker. A non-positive window selects DefaultWindow.
func NewChecker(store Store, n *normalize.Normalizer, window time.Duration) *Checker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Checker{store: store, normalizer: n, window: window}
}

// Filter removes duplicates from raws, preserving order.
func (c *Checker) Filter(ctx context.Context, src *entity.Source, raws []entity.RawArticle) (Result, error) {
	res := Result{Fresh: make([]entity.RawArticle, 0, len(raws))}
	if len(raws) == 0 {
		return res, nil
	}

	urls := make([]string, len(raws))
	batch := make([]string, 0, len(raws))
	for i, raw := range raws {
		urls[i] = normalize.CleanURL(raw.URL)
		if urls[i] != "" {
			batch = append(batch, urls[i])
		}
	}

	stored := map[string]bool{}
	if len(batch) > 0 {
		var err error
		stored, err = c.store.ExistsByURLBatch(ctx, batch)
		if err != nil {
			return Result{}, fmt.Errorf("check urls: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(batch))
	for i, raw := range raws {
		if u := urls[i]; u != "" {
			if _, dup := seen[u]; dup || stored[u] {
				res.URLDuplicates++
				continue
			}
			seen[u] = struct{}{}
		}

		// Untitled items would all share the placeholder key.
		if strings.TrimSpace(raw.Title) != "" {
			key := normalize.TitleKey(c.normalizer.CleanTitle(raw.Title))
			exists, err := c.store.ExistsByTitleWithin(ctx, src.ID, key, c.window)
			if err != nil {
				return Result{}, fmt.Errorf("check title: %w", err)
			}
			if exists {
				res.TitleDuplicates++
				continue
			}
		}
		res.Fresh = append(res.Fresh, raw)
	}
	return res, nil
}
