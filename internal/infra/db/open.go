// Package db opens the Postgres connection pool and applies the schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"localfeed/internal/pkg/config"
)

// ErrMissingDSN is returned when DATABASE_URL is not set.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

// ConnectionConfig holds database connection pool configuration.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns the default connection pool configuration.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// LoadConnectionConfig reads DB_* pool settings, falling back to defaults
// for invalid values.
func LoadConnectionConfig(metrics *config.ConfigMetrics) (ConnectionConfig, []string) {
	d := DefaultConnectionConfig()
	l := config.NewLoader(metrics)
	cfg := ConnectionConfig{
		MaxOpenConns:    l.Int("max_open_conns", "DB_MAX_OPEN_CONNS", d.MaxOpenConns, config.IntRange(1, 1000)),
		MaxIdleConns:    l.Int("max_idle_conns", "DB_MAX_IDLE_CONNS", d.MaxIdleConns, config.IntRange(1, 1000)),
		ConnMaxLifetime: l.Duration("conn_max_lifetime", "DB_CONN_MAX_LIFETIME", d.ConnMaxLifetime, config.ValidatePositiveDuration),
		ConnMaxIdleTime: l.Duration("conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME", d.ConnMaxIdleTime, config.ValidatePositiveDuration),
	}
	return cfg, l.Finish()
}

// Open creates a connection pool from DATABASE_URL and verifies it with a ping.
func Open(ctx context.Context) (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	cfg, warnings := LoadConnectionConfig(nil)
	for _, w := range warnings {
		slog.Warn("database config fallback", slog.String("detail", w))
	}
	return OpenDSN(ctx, dsn, cfg)
}

// OpenDSN creates a pool for dsn with the given settings.
func OpenDSN(ctx context.Context, dsn string, cfg ConnectionConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	configurePool(db, cfg)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))
	return db, nil
}

func configurePool(db *sql.DB, cfg ConnectionConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}
