package postgres_test

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfeed/internal/domain/entity"
	"localfeed/internal/infra/adapter/persistence/postgres"
	"localfeed/internal/repository"
)

/* ──────────────────────────── Search ──────────────────────────── */

func TestArticleQueryBuilder_Search_NoFilters(t *testing.T) {
	query, args, err := postgres.NewArticleQueryBuilder().
		Search(repository.ArticleSearchFilters{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "FROM articles")
	assert.Contains(t, query, "ORDER BY published_at DESC NULLS LAST, id DESC")
	assert.Contains(t, query, "LIMIT 50")
	assert.Empty(t, args)
}

func TestArticleQueryBuilder_Search_Keywords(t *testing.T) {
	query, args, err := postgres.NewArticleQueryBuilder().Search(repository.ArticleSearchFilters{
		Keywords: []string{"Transit", "  ", "fare"},
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "(title ILIKE $1 OR description ILIKE $2)")
	assert.Contains(t, query, "(title ILIKE $3 OR description ILIKE $4)")
	assert.Equal(t, []any{"%Transit%", "%Transit%", "%fare%", "%fare%"}, args)
}

func TestArticleQueryBuilder_Search_AllFilters(t *testing.T) {
	category := entity.CategoryLocal
	sourceID := int64(3)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := postgres.NewArticleQueryBuilder().Search(repository.ArticleSearchFilters{
		Category:     &category,
		SourceID:     &sourceID,
		From:         &from,
		To:           &to,
		VerifiedOnly: true,
		Limit:        10,
	}).ToSql()
	require.NoError(t, err)

	for _, fragment := range []string{
		"category = $1",
		"source_id = $2",
		"published_at >= $3",
		"published_at <= $4",
		"verified = $5",
		"LIMIT 10",
	} {
		assert.Contains(t, query, fragment)
	}
	assert.Equal(t, []any{"local", int64(3), from, to, true}, args)
}

func TestArticleQueryBuilder_Search_NearOverFetches(t *testing.T) {
	query, args, err := postgres.NewArticleQueryBuilder().Search(repository.ArticleSearchFilters{
		Near:  &repository.GeoFilter{Latitude: 30.2672, Longitude: -97.7431, RadiusKm: 25},
		Limit: 5,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, "latitude IS NOT NULL")
	assert.Contains(t, query, "longitude IS NOT NULL")
	assert.Contains(t, query, "LIMIT 20")
	require.Len(t, args, 4)

	minLat, maxLat := args[0].(float64), args[1].(float64)
	assert.Less(t, minLat, 30.2672)
	assert.Greater(t, maxLat, 30.2672)
}

/* ──────────────────────────── Nearby ──────────────────────────── */

func TestArticleQueryBuilder_Nearby(t *testing.T) {
	query, args, err := postgres.NewArticleQueryBuilder().Nearby(45.5152, -122.6784, 10, 3).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "SELECT id, source_id, external_id"))
	assert.Contains(t, query,
		"ORDER BY ((latitude - $5) * (latitude - $6) + (longitude - $7) * (longitude - $8) * $9) ASC, id DESC LIMIT 12")
	require.Len(t, args, 9)
	assert.Equal(t, []any{45.5152, 45.5152, -122.6784, -122.6784}, args[4:8])
	cos := math.Cos(45.5152 * math.Pi / 180)
	assert.InDelta(t, cos*cos, args[8], 1e-12)
}

func TestArticleQueryBuilder_Nearby_OrdersByDistanceBeforeLimit(t *testing.T) {
	query, _, err := postgres.NewArticleQueryBuilder().Nearby(40.7, -74.0, 10, 5).ToSql()
	require.NoError(t, err)

	orderBy := query[strings.Index(query, "ORDER BY"):]
	assert.NotContains(t, orderBy, "relevance_score")
	assert.Less(t, strings.Index(orderBy, "latitude"), strings.Index(orderBy, "LIMIT 20"))
}

/* ──────────────────────────── EscapeILIKE ──────────────────────────── */

func TestEscapeILIKE(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.EscapeILIKE(tt.in))
		})
	}
}
