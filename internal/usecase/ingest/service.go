// Package ingest drives the ingestion pipeline: for every active source it
// fetches, deduplicates, normalizes, enriches, scores and stores articles.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
	"localfeed/internal/infra/lease"
	"localfeed/internal/observability/logging"
	"localfeed/internal/observability/metrics"
	"localfeed/internal/observability/tracing"
	"localfeed/internal/repository"
	"localfeed/internal/usecase/categorize"
	"localfeed/internal/usecase/dedupe"
	"localfeed/internal/usecase/geo"
	"localfeed/internal/usecase/normalize"
	"localfeed/internal/usecase/score"
)

// ErrRegistryUnavailable aborts a run when active sources cannot be listed.
var ErrRegistryUnavailable = errors.New("source registry unavailable")

// Fetcher returns raw articles for a source. scraper.Router implements it.
type Fetcher interface {
	Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error)
}

// ContentFetcher downloads the readable text of an article page.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// Service runs ingestion. It is safe for concurrent use; concurrent runs
// coordinate through leases.
type Service struct {
	sources  repository.SourceRepository
	articles repository.ArticleRepository
	fetcher  Fetcher
	leases   lease.Manager
	content  ContentFetcher

	normalizer  *normalize.Normalizer
	categorizer *categorize.Categorizer
	extractor   *geo.Extractor
	checker     *dedupe.Checker

	cfg Config
	now func() time.Time
}

// NewService wires the pipeline. A nil lease manager selects an in-process one.
func NewService(
	sources repository.SourceRepository,
	articles repository.ArticleRepository,
	fetcher Fetcher,
	leases lease.Manager,
	catalog *config.Catalog,
	cfg Config,
) *Service {
	if leases == nil {
		leases = lease.NewMemory()
	}
	cfg = cfg.withDefaults()
	n := normalize.New(catalog)
	return &Service{
		sources:     sources,
		articles:    articles,
		fetcher:     fetcher,
		leases:      leases,
		normalizer:  n,
		categorizer: categorize.New(catalog),
		extractor:   geo.NewExtractor(geo.NewGazetteer(catalog.Gazetteer)),
		checker:     dedupe.NewChecker(articles, n, cfg.DuplicateWindow),
		cfg:         cfg,
		now:         time.Now,
	}
}

// WithContentFetcher enables content enhancement.
func (s *Service) WithContentFetcher(cf ContentFetcher) *Service {
	s.content = cf
	return s
}

// WithClock replaces the clock used for rate limiting and timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.normalizer.WithClock(now)
	return s
}

// RunOnce processes every active source once. Only registry failure is
// returned as an error; per-source failures are captured in the report.
func (s *Service) RunOnce(ctx context.Context) (report *RunReport, err error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := logging.FromContext(ctx).With(slog.String("run_id", runID))
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartSpan(ctx, "ingest.RunOnce", attribute.String("run.id", runID))
	defer func() { tracing.EndSpan(span, err) }()

	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	srcs, err := s.sources.ListActive(ctx)
	if err != nil {
		metrics.RecordRun(true, time.Since(start))
		logger.Error("ingest run aborted", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	results := make([]sourceResult, len(srcs))
	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)
	for i, src := range srcs {
		i, src := i, src
		g.Go(func() error {
			results[i] = s.processSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	report = &RunReport{RunID: runID, Sources: []string{}}
	for i, src := range srcs {
		report.add(src.ID, src.Name, results[i])
	}
	report.Duration = time.Since(start)
	metrics.RecordRun(false, report.Duration)
	span.SetAttributes(
		attribute.Int("run.sources", len(srcs)),
		attribute.Int("run.stored", report.Stored),
		attribute.Int("run.errors", report.Errors))

	logger.Info("ingest run completed",
		slog.Int("sources", len(srcs)),
		slog.Int("fetched", report.Fetched),
		slog.Int("processed", report.Processed),
		slog.Int("stored", report.Stored),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("filtered", report.Filtered),
		slog.Int("skipped", report.Skipped),
		slog.Int("errors", report.Errors),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// processSource runs the pipeline for one source. It never panics; a
// failure is recorded in the result.
func (s *Service) processSource(ctx context.Context, src *entity.Source) (res sourceResult) {
	logger := logging.FromContext(ctx).With(
		slog.Int64("source_id", src.ID),
		slog.String("source_name", src.Name))
	ctx = logging.WithLogger(ctx, logger)

	ctx, span := tracing.StartSpan(ctx, "ingest.source",
		attribute.Int64("source.id", src.ID),
		attribute.String("source.name", src.Name))
	defer func() {
		if rec := recover(); rec != nil {
			res.err = fmt.Errorf("panic: %v", rec)
		}
		if res.err != nil {
			logger.Warn("source failed", slog.Any("error", res.err))
		}
		tracing.EndSpan(span, res.err)
	}()

	held, ok, err := s.leases.TryAcquire(ctx, src.ID, s.cfg.LeaseTTL)
	if err != nil {
		res.err = fmt.Errorf("acquire lease: %w", err)
		return res
	}
	if !ok {
		logger.Info("source leased by another run, skipping")
		res.skipped = metrics.SkipLeaseHeld
		metrics.RecordSourceSkipped(res.skipped)
		return res
	}
	defer func() {
		if err := held.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, lease.ErrNotHeld) {
			logger.Warn("failed to release lease", slog.Any("error", err))
		}
	}()

	// Re-read under the lease so the rate-limit decision sees the latest fetch time.
	current, err := s.sources.Get(ctx, src.ID)
	if err != nil {
		res.err = fmt.Errorf("reload source: %w", err)
		return res
	}
	if due, wait := current.DueForFetch(s.now()); !due {
		logger.Debug("source rate limited, skipping", slog.Duration("wait", wait))
		res.skipped = metrics.SkipRateLimited
		metrics.RecordSourceSkipped(res.skipped)
		return res
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	raws, err := s.fetcher.Fetch(fetchCtx, current)
	cancel()
	res.fetched = len(raws)
	if err != nil {
		res.err = fmt.Errorf("fetch: %w", err)
		return res
	}

	checked, err := s.checker.Filter(ctx, current, raws)
	if err != nil {
		res.err = fmt.Errorf("dedupe: %w", err)
		return res
	}
	res.urlDuplicates = checked.URLDuplicates
	res.titleDuplicates = checked.TitleDuplicates

	articles := make([]*entity.Article, 0, len(checked.Fresh))
	headlines := make(map[*entity.Article]string, len(checked.Fresh))
	for _, raw := range checked.Fresh {
		a := s.normalizer.Normalize(raw, current)
		headlines[a] = s.normalizer.Headline(raw.Title)
		articles = append(articles, a)
	}
	s.enhanceContent(ctx, articles)

	confidence := make(map[*entity.Article]float64, len(articles))
	for _, a := range articles {
		confidence[a] = s.enrich(a, headlines[a])
	}
	res.processed = len(articles)

	kept, dropped := normalize.FilterByQuality(articles, s.cfg.QualityThreshold)
	res.filtered = dropped
	for _, a := range kept {
		a.RelevanceScore = score.Score(a, current, confidence[a])
	}

	batch := normalize.Dedupe(kept)
	res.batchDuplicates = len(kept) - len(batch)

	if len(batch) > 0 {
		stored, err := s.articles.InsertMany(ctx, batch)
		if err != nil {
			res.err = fmt.Errorf("insert articles: %w", err)
			return res
		}
		res.stored = stored
		res.conflicts = len(batch) - stored
	}

	if err := s.sources.TouchFetchedAt(context.WithoutCancel(ctx), current.ID, s.now()); err != nil {
		res.err = fmt.Errorf("update last fetch: %w", err)
		return res
	}

	metrics.RecordArticles(current.ID, res.fetched, res.stored)
	metrics.RecordDuplicates("url", res.urlDuplicates+res.conflicts)
	metrics.RecordDuplicates("title", res.titleDuplicates)
	metrics.RecordDuplicates("batch", res.batchDuplicates)
	metrics.RecordFiltered(res.filtered)

	logger.Info("source processed",
		slog.Int("fetched", res.fetched),
		slog.Int("stored", res.stored),
		slog.Int("duplicates", res.duplicates()),
		slog.Int("filtered", res.filtered))
	return res
}

// enrich applies the categorizer and location extractor in place and
// returns the category confidence, zero when no confident category was found.
// headline is the pre-casing title the extractor scans for place names.
func (s *Service) enrich(a *entity.Article, headline string) float64 {
	var confidence float64
	if r, ok := s.categorizer.Categorize(a); ok {
		a.Category = r.Category
		confidence = r.Confidence
	}
	if loc, ok := s.extractor.Extract(a, headline); ok && geo.ValidCoordinates(loc.Latitude, loc.Longitude) {
		a.SetLocation(loc.Latitude, loc.Longitude, loc.Name)
	}
	return confidence
}

// enhanceContent replaces short content with the page's readable text.
// Failures keep the original content.
func (s *Service) enhanceContent(ctx context.Context, articles []*entity.Article) {
	if s.content == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(s.cfg.ContentParallelism)
	for _, a := range articles {
		if a.URL == "" || utf8.RuneCountInString(a.Content) >= s.cfg.ContentThreshold {
			continue
		}
		a := a
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
			defer cancel()

			text, err := s.content.FetchContent(fetchCtx, a.URL)
			if err != nil {
				logging.FromContext(ctx).Debug("content enhancement failed",
					slog.String("url", a.URL),
					slog.Any("error", err))
				return nil
			}
			if cleaned := normalize.CleanContent(text); utf8.RuneCountInString(cleaned) > utf8.RuneCountInString(a.Content) {
				a.Content = cleaned
			}
			return nil
		})
	}
	_ = g.Wait()
}
