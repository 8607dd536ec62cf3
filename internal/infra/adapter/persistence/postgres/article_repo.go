package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"localfeed/internal/domain/entity"
	"localfeed/internal/repository"
	"localfeed/internal/usecase/geo"
	"localfeed/internal/usecase/normalize"
)

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		a            entity.Article
		description  sql.NullString
		content      sql.NullString
		url          sql.NullString
		imageURL     sql.NullString
		publishedAt  sql.NullTime
		author       sql.NullString
		category     string
		tags         []string
		latitude     sql.NullFloat64
		longitude    sql.NullFloat64
		locationName sql.NullString
	)
	if err := row.Scan(
		&a.ID, &a.SourceID, &a.ExternalID, &a.Title, &description, &content,
		&url, &imageURL, &publishedAt, &author, &category, pq.Array(&tags),
		&latitude, &longitude, &locationName,
		&a.RelevanceScore, &a.EngagementScore, &a.Verified, &a.Featured,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Description = description.String
	a.Content = content.String
	a.URL = url.String
	a.ImageURL = imageURL.String
	a.Author = author.String
	a.LocationName = locationName.String
	a.Category = entity.Category(category)
	a.Tags = tags
	if publishedAt.Valid {
		t := publishedAt.Time
		a.PublishedAt = &t
	}
	if latitude.Valid && longitude.Valid {
		lat, lng := latitude.Float64, longitude.Float64
		a.Latitude, a.Longitude = &lat, &lng
	}
	return &a, nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	defer recordQuery("article_get", time.Now())
	query := `SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("Get: article %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	defer recordQuery("article_exists_url", time.Now())
	const query = `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

// ExistsByURLBatch returns an entry for every requested URL.
func (repo *ArticleRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}
	for _, u := range urls {
		result[u] = false
	}

	defer recordQuery("article_exists_url_batch", time.Now())
	const query = `SELECT url FROM articles WHERE url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
		}
		result[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: %w", err)
	}
	return result, nil
}

func (repo *ArticleRepo) ExistsByTitleWithin(ctx context.Context, sourceID int64, titleKey string, window time.Duration) (bool, error) {
	defer recordQuery("article_exists_title", time.Now())
	const query = `
SELECT EXISTS(
	SELECT 1 FROM articles
	WHERE source_id = $1 AND title_key = $2 AND created_at > $3
)`
	since := time.Now().Add(-window)
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, sourceID, titleKey, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByTitleWithin: %w", err)
	}
	return exists, nil
}

// InsertMany stores the batch in one transaction. Rows whose URL already
// exists are skipped; stored articles get their ID and timestamps set.
func (repo *ArticleRepo) InsertMany(ctx context.Context, articles []*entity.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}
	defer recordQuery("article_insert_many", time.Now())

	const query = `
INSERT INTO articles
       (source_id, external_id, title, title_key, description, content, url, image_url,
        published_at, author, category, tags, latitude, longitude, location_name,
        relevance_score, engagement_score, verified, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
ON CONFLICT (url) DO NOTHING
RETURNING id, created_at, updated_at`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("InsertMany: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, a := range articles {
		err := tx.QueryRowContext(ctx, query,
			a.SourceID, a.ExternalID, a.Title, normalize.TitleKey(a.Title),
			nullString(a.Description), nullString(a.Content), nullString(a.URL),
			nullString(a.ImageURL), a.PublishedAt, nullString(a.Author),
			string(a.Category), pq.Array(tagsOrEmpty(a.Tags)), a.Latitude, a.Longitude,
			nullString(a.LocationName), a.RelevanceScore, a.EngagementScore,
			a.Verified, a.Featured,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("InsertMany: %q: %w", a.Title, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("InsertMany: commit: %w", err)
	}
	return inserted, nil
}

// Nearby returns up to limit located articles within radiusKm, closest first.
func (repo *ArticleRepo) Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]repository.NearbyArticle, error) {
	if limit <= 0 {
		limit = repository.DefaultSearchLimit
	}
	defer recordQuery("article_nearby", time.Now())

	query, args, err := repo.queryBuilder.Nearby(lat, lng, radiusKm, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("Nearby: build query: %w", err)
	}
	candidates, err := repo.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("Nearby: %w", err)
	}

	nearby := withinRadius(candidates, lat, lng, radiusKm)
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}

func (repo *ArticleRepo) Search(ctx context.Context, filters repository.ArticleSearchFilters) ([]*entity.Article, error) {
	defer recordQuery("article_search", time.Now())

	query, args, err := repo.queryBuilder.Search(filters).ToSql()
	if err != nil {
		return nil, fmt.Errorf("Search: build query: %w", err)
	}
	articles, err := repo.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	if filters.Near == nil {
		return articles, nil
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = repository.DefaultSearchLimit
	}
	n := filters.Near
	result := make([]*entity.Article, 0, len(articles))
	for _, na := range withinRadius(articles, n.Latitude, n.Longitude, n.RadiusKm) {
		if len(result) == limit {
			break
		}
		result = append(result, na.Article)
	}
	return result, nil
}

func (repo *ArticleRepo) query(ctx context.Context, query string, args []any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var articles []*entity.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// withinRadius keeps located articles inside the circle, preserving order.
func withinRadius(articles []*entity.Article, lat, lng, radiusKm float64) []repository.NearbyArticle {
	out := make([]repository.NearbyArticle, 0, len(articles))
	for _, a := range articles {
		if !a.HasCoordinates() {
			continue
		}
		d := geo.Haversine(lat, lng, *a.Latitude, *a.Longitude)
		if d <= radiusKm {
			out = append(out, repository.NearbyArticle{Article: a, DistanceKm: d})
		}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func tagsOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
