package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	pgRepo "localfeed/internal/infra/adapter/persistence/postgres"
	"localfeed/internal/infra/fetcher"
	"localfeed/internal/infra/lease"
	"localfeed/internal/infra/scraper"
	workerPkg "localfeed/internal/infra/worker"
	"localfeed/internal/usecase/ingest"
)

// runOutput is the JSON form of a run report.
type runOutput struct {
	RunID        string               `json:"run_id"`
	Fetched      int                  `json:"fetched"`
	Processed    int                  `json:"processed"`
	Stored       int                  `json:"stored"`
	Duplicates   int                  `json:"duplicates"`
	Filtered     int                  `json:"filtered"`
	Skipped      int                  `json:"skipped"`
	Errors       int                  `json:"errors"`
	Sources      []string             `json:"sources"`
	SourceErrors []ingest.SourceError `json:"source_errors,omitempty"`
	DurationMs   int64                `json:"duration_ms"`
}

var (
	flagRSS         bool
	flagParallelism int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingestion pass over every active source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().BoolVar(&flagRSS, "rss", false, "enable the RSS adapter (overrides INGEST_RSS_ENABLED)")
	runCmd.Flags().IntVar(&flagParallelism, "parallelism", 0, "concurrent sources (0 keeps INGEST_PARALLELISM)")
}

func runIngest(ctx context.Context, w io.Writer) error {
	cfg, _ := workerPkg.LoadConfigFromEnv(logger, nil)
	if flagRSS {
		cfg.RSSEnabled = true
	}
	if flagParallelism > 0 {
		cfg.Ingest.Parallelism = flagParallelism
	}

	catalog, err := loadCatalog()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	database, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	var leases lease.Manager = lease.NewMemory()
	if cfg.RedisURL != "" {
		r, err := lease.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() { _ = r.Close() }()
		leases = r
	}

	httpClient := fetcher.NewGuardedClient(fetcher.ClientOptions{Timeout: 30 * time.Second, MaxRedirects: 5})
	router := scraper.NewFactory(httpClient, catalog).CreateRouter(pgRepo.NewCommunityRepo(database), scraper.FactoryOptions{
		RSSEnabled:       cfg.RSSEnabled,
		CommunityBaseURL: cfg.CommunityBaseURL,
		CommunityLimit:   cfg.CommunityLimit,
	})

	contentConfig, _ := fetcher.LoadConfigFromEnv(nil)
	ingestConfig := cfg.Ingest
	ingestConfig.ContentThreshold = contentConfig.Threshold

	svc := ingest.NewService(pgRepo.NewSourceRepo(database), pgRepo.NewArticleRepo(database),
		router, leases, catalog, ingestConfig)
	if contentConfig.Enabled {
		svc.WithContentFetcher(fetcher.NewReadabilityFetcher(contentConfig))
	}

	report, err := svc.RunOnce(ctx)
	if err != nil {
		return err
	}

	if flagOutput == "json" {
		return printJSON(w, runOutput{
			RunID: report.RunID, Fetched: report.Fetched, Processed: report.Processed,
			Stored: report.Stored, Duplicates: report.Duplicates, Filtered: report.Filtered,
			Skipped: report.Skipped, Errors: report.Errors, Sources: report.Sources,
			SourceErrors: report.SourceErrors, DurationMs: report.Duration.Milliseconds(),
		})
	}

	fmt.Fprintf(w, "Run %s finished in %s\n", report.RunID, report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  fetched:    %d\n", report.Fetched)
	fmt.Fprintf(w, "  processed:  %d\n", report.Processed)
	fmt.Fprintf(w, "  stored:     %d\n", report.Stored)
	fmt.Fprintf(w, "  duplicates: %d\n", report.Duplicates)
	fmt.Fprintf(w, "  filtered:   %d\n", report.Filtered)
	fmt.Fprintf(w, "  skipped:    %d\n", report.Skipped)
	fmt.Fprintf(w, "  errors:     %d\n", report.Errors)
	for _, name := range report.Sources {
		fmt.Fprintf(w, "  ok: %s\n", name)
	}
	for _, se := range report.SourceErrors {
		fmt.Fprintf(w, "  failed: %s (%d): %s\n", se.SourceName, se.SourceID, se.Err)
	}
	return nil
}
