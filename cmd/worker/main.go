package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"localfeed/internal/config"
	pgRepo "localfeed/internal/infra/adapter/persistence/postgres"
	"localfeed/internal/infra/db"
	"localfeed/internal/infra/fetcher"
	"localfeed/internal/infra/lease"
	"localfeed/internal/infra/scraper"
	workerPkg "localfeed/internal/infra/worker"
	"localfeed/internal/observability/logging"
	pkgconfig "localfeed/internal/pkg/config"
	"localfeed/internal/usecase/ingest"
)

func main() {
	_ = godotenv.Load()
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("parallelism", workerConfig.Ingest.Parallelism),
		slog.Duration("run_timeout", workerConfig.Ingest.RunTimeout),
		slog.Bool("rss_enabled", workerConfig.RSSEnabled),
		slog.Int("health_port", workerConfig.HealthPort))

	catalog, err := loadCatalog(workerConfig.CatalogPath)
	if err != nil {
		logger.Error("failed to load catalog", slog.Any("error", err))
		os.Exit(1)
	}

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	healthServer.AddCheck("database", database.PingContext)

	leases, closeLeases := initLeases(ctx, logger, workerConfig.RedisURL, healthServer)
	defer closeLeases()

	svc := setupIngestService(logger, database, leases, catalog, workerConfig)

	startMetricsServer(ctx, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := workerPkg.NewIngestJob(svc, workerMetrics, logger)
	healthServer.SetJob(job)

	runCronWorker(ctx, logger, job, workerConfig, healthServer)
}

func loadCatalog(path string) (*config.Catalog, error) {
	if path == "" {
		return config.DefaultCatalog()
	}
	return config.LoadCatalog(path)
}

// initDatabase opens the database connection and applies the schema.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	if err := db.MigrateUp(database); err != nil {
		logger.Error("migration failed", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// initLeases selects Redis leases when configured and reachable, and
// in-process leases otherwise.
func initLeases(ctx context.Context, logger *slog.Logger, redisURL string, health *workerPkg.HealthServer) (lease.Manager, func()) {
	if redisURL == "" {
		logger.Info("using in-process source leases")
		return lease.NewMemory(), func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	r, err := lease.Connect(connectCtx, redisURL)
	if err != nil {
		logger.Warn("redis unavailable, falling back to in-process source leases", slog.Any("error", err))
		return lease.NewMemory(), func() {}
	}
	health.AddCheck("redis", r.Ping)
	logger.Info("using redis source leases")
	return r, func() {
		if err := r.Close(); err != nil {
			logger.Error("failed to close redis", slog.Any("error", err))
		}
	}
}

// setupIngestService wires adapters, repositories and the optional
// content fetcher into the orchestrator.
func setupIngestService(
	logger *slog.Logger,
	database *sql.DB,
	leases lease.Manager,
	catalog *config.Catalog,
	cfg *workerPkg.WorkerConfig,
) *ingest.Service {
	srcRepo := pgRepo.NewSourceRepo(database)
	artRepo := pgRepo.NewArticleRepo(database)
	communityRepo := pgRepo.NewCommunityRepo(database)

	httpClient := fetcher.NewGuardedClient(fetcher.ClientOptions{
		Timeout:      30 * time.Second,
		MaxRedirects: 5,
	})
	router := scraper.NewFactory(httpClient, catalog).CreateRouter(communityRepo, scraper.FactoryOptions{
		RSSEnabled:       cfg.RSSEnabled,
		CommunityBaseURL: cfg.CommunityBaseURL,
		CommunityLimit:   cfg.CommunityLimit,
	})

	contentConfig, warnings := fetcher.LoadConfigFromEnv(pkgconfig.NewConfigMetrics("content_fetch"))
	for _, w := range warnings {
		logger.Warn("Configuration fallback applied", slog.String("warning", w))
	}

	ingestConfig := cfg.Ingest
	ingestConfig.ContentThreshold = contentConfig.Threshold
	svc := ingest.NewService(srcRepo, artRepo, router, leases, catalog, ingestConfig)

	if contentConfig.Enabled {
		svc.WithContentFetcher(fetcher.NewReadabilityFetcher(contentConfig))
		logger.Info("Content fetching enabled",
			slog.Int("threshold", contentConfig.Threshold),
			slog.Duration("timeout", contentConfig.Timeout))
	} else {
		logger.Info("Content fetching disabled")
	}
	return svc
}

// runCronWorker schedules ingestion runs and blocks until ctx is done.
func runCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	job *workerPkg.IngestJob,
	cfg *workerPkg.WorkerConfig,
	healthServer *workerPkg.HealthServer,
) {
	scheduler, err := workerPkg.NewScheduler(cfg, job)
	if err != nil {
		logger.Error("failed to schedule ingestion", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Time("next_run", scheduler.Next()))

	if cfg.RunOnStart {
		go job.Run(ctx)
	}

	<-ctx.Done()
	healthServer.SetReady(false)
	logger.Info("shutdown signal received, waiting for running ingestion")
	<-scheduler.Stop().Done()
	logger.Info("worker stopped")
}
