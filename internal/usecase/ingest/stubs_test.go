package ingest

import (
	"context"
	"errors"
	"sync"
	"time"

	"localfeed/internal/domain/entity"
	"localfeed/internal/repository"
	"localfeed/internal/usecase/normalize"
)

type stubSourceRepo struct {
	mu      sync.Mutex
	sources map[int64]*entity.Source
	order   []int64
	listErr error
	touched map[int64]time.Time
}

func newStubSourceRepo(srcs ...*entity.Source) *stubSourceRepo {
	r := &stubSourceRepo{sources: map[int64]*entity.Source{}, touched: map[int64]time.Time{}}
	for _, s := range srcs {
		r.sources[s.ID] = s
		r.order = append(r.order, s.ID)
	}
	return r
}

func (r *stubSourceRepo) Get(_ context.Context, id int64) (*entity.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	return r.ListActive(ctx)
}

func (r *stubSourceRepo) ListActive(context.Context) ([]*entity.Source, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]*entity.Source, 0, len(r.order))
	for _, id := range r.order {
		if s := r.sources[id]; s.Active {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubSourceRepo) Create(context.Context, *entity.Source) error { return errors.New("not implemented") }
func (r *stubSourceRepo) Update(context.Context, *entity.Source) error { return errors.New("not implemented") }
func (r *stubSourceRepo) Delete(context.Context, int64) error          { return errors.New("not implemented") }

func (r *stubSourceRepo) TouchFetchedAt(_ context.Context, id int64, t time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[id]
	if !ok {
		return entity.ErrNotFound
	}
	s.LastFetchedAt = &t
	r.touched[id] = t
	return nil
}

// memArticleRepo enforces URL uniqueness like the real store.
type memArticleRepo struct {
	mu        sync.Mutex
	now       func() time.Time
	articles  []*entity.Article
	insertErr error
}

var _ repository.ArticleRepository = (*memArticleRepo)(nil)

func (r *memArticleRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r *memArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	m, err := r.ExistsByURLBatch(ctx, []string{url})
	return m[url], err
}

func (r *memArticleRepo) ExistsByURLBatch(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]bool, len(urls))
	for _, u := range urls {
		for _, a := range r.articles {
			if a.URL != "" && a.URL == u {
				out[u] = true
			}
		}
	}
	return out, nil
}

func (r *memArticleRepo) ExistsByTitleWithin(_ context.Context, sourceID int64, titleKey string, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-window)
	for _, a := range r.articles {
		if a.SourceID == sourceID && normalize.TitleKey(a.Title) == titleKey && a.CreatedAt.After(cutoff) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memArticleRepo) InsertMany(_ context.Context, articles []*entity.Article) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return 0, r.insertErr
	}
	inserted := 0
	for _, a := range articles {
		conflict := false
		for _, b := range r.articles {
			if a.URL != "" && a.URL == b.URL {
				conflict = true
				break
			}
		}
		if conflict {
			continue
		}
		cp := *a
		cp.ID = int64(len(r.articles) + 1)
		r.articles = append(r.articles, &cp)
		inserted++
	}
	return inserted, nil
}

func (r *memArticleRepo) Nearby(context.Context, float64, float64, float64, int) ([]repository.NearbyArticle, error) {
	return nil, nil
}

func (r *memArticleRepo) Search(context.Context, repository.ArticleSearchFilters) ([]*entity.Article, error) {
	return nil, nil
}

func (r *memArticleRepo) stored() []*entity.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*entity.Article(nil), r.articles...)
}

type stubFetcher struct {
	mu    sync.Mutex
	items map[int64][]entity.RawArticle
	errs  map[int64]error
	calls map[int64]int
	// hang makes Fetch block until its context is done.
	hang map[int64]bool
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		items: map[int64][]entity.RawArticle{},
		errs:  map[int64]error{},
		calls: map[int64]int{},
		hang:  map[int64]bool{},
	}
}

func (f *stubFetcher) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	f.mu.Lock()
	f.calls[src.ID]++
	hang := f.hang[src.ID]
	f.mu.Unlock()
	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[src.ID]; err != nil {
		return []entity.RawArticle{}, err
	}
	return append([]entity.RawArticle(nil), f.items[src.ID]...), nil
}

func (f *stubFetcher) callCount(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type stubContentFetcher struct {
	text string
	err  error
	urls []string
	mu   sync.Mutex
}

func (c *stubContentFetcher) FetchContent(_ context.Context, url string) (string, error) {
	c.mu.Lock()
	c.urls = append(c.urls, url)
	c.mu.Unlock()
	return c.text, c.err
}
