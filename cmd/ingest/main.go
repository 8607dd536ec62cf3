// Package main provides the one-shot ingestion CLI.
//
// Usage:
//
//	localfeed-ingest run      [--rss] [--parallelism N]
//	localfeed-ingest validate [--id N]
//	localfeed-ingest search   --source ID "query"
//	localfeed-ingest search   --local [--category C] [--lat X --lng Y --radius KM] [--limit N] "keywords..."
//	localfeed-ingest source   list | add | update ID | remove ID
//	localfeed-ingest migrate  [--down]
//
// Every command accepts --output json.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
