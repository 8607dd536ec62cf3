// Package postgres provides PostgreSQL implementations of repository interfaces.
package postgres

import (
	"math"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"localfeed/internal/repository"
	"localfeed/internal/usecase/geo"
)

const articleColumns = "id, source_id, external_id, title, description, content, url, image_url, " +
	"published_at, author, category, tags, latitude, longitude, location_name, " +
	"relevance_score, engagement_score, verified, featured, created_at, updated_at"

// psql builds statements with $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ArticleQueryBuilder builds article read queries.
type ArticleQueryBuilder struct{}

// NewArticleQueryBuilder creates a new query builder instance.
func NewArticleQueryBuilder() *ArticleQueryBuilder {
	return &ArticleQueryBuilder{}
}

// Search builds the filtered search query. Keywords are AND-ed, each
// matched case-insensitively against title and description. A location
// filter narrows to the bounding box; callers apply the exact radius.
func (qb *ArticleQueryBuilder) Search(filters repository.ArticleSearchFilters) sq.SelectBuilder {
	q := psql.Select(articleColumns).From("articles")

	for _, kw := range filters.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		pattern := "%" + EscapeILIKE(kw) + "%"
		q = q.Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}
	if filters.Category != nil {
		q = q.Where(sq.Eq{"category": string(*filters.Category)})
	}
	if filters.SourceID != nil {
		q = q.Where(sq.Eq{"source_id": *filters.SourceID})
	}
	if filters.From != nil {
		q = q.Where(sq.GtOrEq{"published_at": *filters.From})
	}
	if filters.To != nil {
		q = q.Where(sq.LtOrEq{"published_at": *filters.To})
	}
	if filters.VerifiedOnly {
		q = q.Where(sq.Eq{"verified": true})
	}
	if n := filters.Near; n != nil {
		q = qb.withinBox(q, n.Latitude, n.Longitude, n.RadiusKm)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = repository.DefaultSearchLimit
	}
	if filters.Near != nil {
		// The exact radius filter runs after the query; over-fetch to compensate.
		limit *= 4
	}
	return q.OrderBy("published_at DESC NULLS LAST", "id DESC").Limit(uint64(limit))
}

// Nearby builds the bounding-box candidate query for a radius search.
// Candidates come back closest first by an equirectangular approximation
// (squared degree deltas, longitude scaled by cos(lat)), so the LIMIT
// only cuts the farthest ones. The caller re-sorts by great-circle distance.
func (qb *ArticleQueryBuilder) Nearby(lat, lng, radiusKm float64, limit int) sq.SelectBuilder {
	q := psql.Select(articleColumns).From("articles")
	q = qb.withinBox(q, lat, lng, radiusKm)
	cos := math.Cos(lat * math.Pi / 180)
	return q.OrderByClause(
		"((latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?) * ?) ASC",
		lat, lat, lng, lng, cos*cos,
	).OrderBy("id DESC").Limit(uint64(limit * 4))
}

func (qb *ArticleQueryBuilder) withinBox(q sq.SelectBuilder, lat, lng, radiusKm float64) sq.SelectBuilder {
	minLat, maxLat, minLng, maxLng := geo.BoundingBox(lat, lng, radiusKm)
	return q.Where(sq.NotEq{"latitude": nil}).
		Where(sq.NotEq{"longitude": nil}).
		Where(sq.GtOrEq{"latitude": minLat}).
		Where(sq.LtOrEq{"latitude": maxLat}).
		Where(sq.GtOrEq{"longitude": minLng}).
		Where(sq.LtOrEq{"longitude": maxLng})
}

// EscapeILIKE escapes ILIKE wildcards so user input matches literally.
func EscapeILIKE(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
