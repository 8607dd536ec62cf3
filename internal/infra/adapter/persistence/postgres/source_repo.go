package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/metrics"
	"localfeed/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

const sourceColumns = `id, name, kind, provider, endpoint, api_key, categories, location_bias,
       requests_per_hour, last_fetched_at, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*entity.Source, error) {
	var (
		source     entity.Source
		kind       string
		provider   string
		categories []string
	)
	if err := row.Scan(
		&source.ID, &source.Name, &kind, &provider, &source.Endpoint, &source.APIKey,
		pq.Array(&categories), &source.LocationBias, &source.RequestsPerHour,
		&source.LastFetchedAt, &source.Active, &source.CreatedAt, &source.UpdatedAt,
	); err != nil {
		return nil, err
	}
	source.Kind = entity.SourceKind(kind)
	source.Provider = entity.Provider(provider)
	source.Categories = categories
	return &source, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id int64) (*entity.Source, error) {
	defer recordQuery("source_get", time.Now())
	query := `SELECT ` + sourceColumns + `
FROM sources
WHERE id = $1
LIMIT 1`
	source, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: source %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return source, nil
}

func (repo *SourceRepo) List(ctx context.Context) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + `
FROM sources
ORDER BY id ASC`
	return repo.list(ctx, "List", query)
}

func (repo *SourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) {
	query := `SELECT ` + sourceColumns + `
FROM sources
WHERE active = TRUE
ORDER BY id ASC`
	return repo.list(ctx, "ListActive", query)
}

func (repo *SourceRepo) list(ctx context.Context, op, query string) ([]*entity.Source, error) {
	defer recordQuery("source_list", time.Now())
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) Create(ctx context.Context, source *entity.Source) error {
	const query = `
INSERT INTO sources (name, kind, provider, endpoint, api_key, categories, location_bias,
                     requests_per_hour, last_fetched_at, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, updated_at`
	err := repo.db.QueryRowContext(ctx, query,
		source.Name, string(source.Kind), string(source.Provider), source.Endpoint, source.APIKey,
		pq.Array(categoriesOrEmpty(source.Categories)), source.LocationBias,
		source.RequestsPerHour, source.LastFetchedAt, source.Active,
	).Scan(&source.ID, &source.CreatedAt, &source.UpdatedAt)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *SourceRepo) Update(ctx context.Context, source *entity.Source) error {
	const query = `
UPDATE sources SET
       name              = $1,
       kind              = $2,
       provider          = $3,
       endpoint          = $4,
       api_key           = $5,
       categories        = $6,
       location_bias     = $7,
       requests_per_hour = $8,
       active            = $9,
       updated_at        = now()
WHERE id = $10`
	res, err := repo.db.ExecContext(ctx, query,
		source.Name, string(source.Kind), string(source.Provider), source.Endpoint, source.APIKey,
		pq.Array(categoriesOrEmpty(source.Categories)), source.LocationBias,
		source.RequestsPerHour, source.Active, source.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: source %d: %w", source.ID, entity.ErrNotFound)
	}
	return nil
}

func (repo *SourceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM sources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: source %d: %w", id, entity.ErrNotFound)
	}
	return nil
}

func (repo *SourceRepo) TouchFetchedAt(ctx context.Context, id int64, t time.Time) error {
	defer recordQuery("source_touch", time.Now())
	const query = `UPDATE sources SET last_fetched_at = $1 WHERE id = $2`
	if _, err := repo.db.ExecContext(ctx, query, t, id); err != nil {
		return fmt.Errorf("TouchFetchedAt: %w", err)
	}
	return nil
}

func categoriesOrEmpty(c []string) []string {
	if c == nil {
		return []string{}
	}
	return c
}

func recordQuery(operation string, start time.Time) {
	metrics.RecordDBQuery(operation, time.Since(start))
}
