package db

import (
	"database/sql"
	_ "embed"
)

//go:embed seeds/sources.sql
var seedSourcesSQL string

const createSources = `
CREATE TABLE IF NOT EXISTS sources (
    id                BIGSERIAL PRIMARY KEY,
    name              TEXT NOT NULL UNIQUE,
    kind              VARCHAR(16) NOT NULL CHECK (kind IN ('external', 'local', 'rss')),
    provider          VARCHAR(32) NOT NULL DEFAULT '',
    endpoint          TEXT NOT NULL,
    api_key           TEXT NOT NULL DEFAULT '',
    categories        TEXT[] NOT NULL DEFAULT '{}',
    location_bias     TEXT NOT NULL DEFAULT '',
    requests_per_hour INTEGER NOT NULL DEFAULT 1,
    last_fetched_at   TIMESTAMPTZ,
    active            BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createArticles = `
CREATE TABLE IF NOT EXISTS articles (
    id               BIGSERIAL PRIMARY KEY,
    source_id        BIGINT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
    external_id      TEXT NOT NULL,
    title            TEXT NOT NULL,
    title_key        TEXT NOT NULL,
    description      TEXT,
    content          TEXT,
    url              TEXT UNIQUE,
    image_url        TEXT,
    published_at     TIMESTAMPTZ,
    author           TEXT,
    category         VARCHAR(32) NOT NULL DEFAULT 'general',
    tags             TEXT[] NOT NULL DEFAULT '{}',
    latitude         DOUBLE PRECISION CHECK (latitude BETWEEN -90 AND 90),
    longitude        DOUBLE PRECISION CHECK (longitude BETWEEN -180 AND 180),
    location_name    TEXT,
    relevance_score  DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (relevance_score BETWEEN 0 AND 1),
    engagement_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    verified         BOOLEAN NOT NULL DEFAULT FALSE,
    featured         BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createCommunity = `
CREATE TABLE IF NOT EXISTS community_posts (
    id         BIGSERIAL PRIMARY KEY,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL DEFAULT '',
    author     TEXT NOT NULL DEFAULT '',
    image_url  TEXT NOT NULL DEFAULT '',
    location   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS community_events (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    organizer   TEXT NOT NULL DEFAULT '',
    venue       TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    starts_at   TIMESTAMPTZ,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS community_reviews (
    id            BIGSERIAL PRIMARY KEY,
    business_name TEXT NOT NULL,
    rating        INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
    body          TEXT NOT NULL DEFAULT '',
    author        TEXT NOT NULL DEFAULT '',
    location      TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_source_title ON articles(source_id, title_key, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_coordinates ON articles(latitude, longitude) WHERE latitude IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_sources_active ON sources(active) WHERE active = TRUE`,
}

// Trigram indexes speed up ILIKE search. They need pg_trgm, which may be
// unavailable without superuser rights, so failures are ignored.
var searchIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_articles_title_gin ON articles USING gin(title gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_description_gin ON articles USING gin(description gin_trgm_ops)`,
}

// MigrateUp creates the schema and seeds the default sources. It is idempotent.
func MigrateUp(db *sql.DB) error {
	for _, stmt := range []string{createSources, createArticles, createCommunity} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	_, _ = db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	for _, idx := range searchIndexes {
		_, _ = db.Exec(idx)
	}

	if _, err := db.Exec(seedSourcesSQL); err != nil {
		return err
	}
	return nil
}

// MigrateDown drops every table created by MigrateUp.
func MigrateDown(db *sql.DB) error {
	for _, stmt := range []string{
		`DROP TABLE IF EXISTS articles CASCADE`,
		`DROP TABLE IF EXISTS community_reviews`,
		`DROP TABLE IF EXISTS community_events`,
		`DROP TABLE IF EXISTS community_posts`,
		`DROP TABLE IF EXISTS sources CASCADE`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
