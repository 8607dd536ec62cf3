package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"localfeed/internal/config"
	"localfeed/internal/infra/db"
	"localfeed/internal/observability/logging"
)

var (
	flagOutput string
	logger     = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "localfeed-ingest",
	Short: "Run and administer the localfeed ingestion pipeline",
	Long: `localfeed-ingest runs single ingestion passes, manages the source registry
and queries stored articles. Configuration comes from the environment
(DATABASE_URL, CATALOG_PATH, ...) and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagOutput != "text" && flagOutput != "json" {
			return fmt.Errorf("invalid --output %q: want text or json", flagOutput)
		}
		// Logs go to stderr so stdout stays machine-readable.
		logger = logging.New(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format: text or json")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(sourceCmd)
	rootCmd.AddCommand(migrateCmd)
}

// openDatabase opens DATABASE_URL; the caller closes it.
func openDatabase(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func loadCatalog() (*config.Catalog, error) {
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		return config.LoadCatalog(path)
	}
	return config.DefaultCatalog()
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
