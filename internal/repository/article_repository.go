package repository

import (
	"context"
	"time"

	"localfeed/internal/domain/entity"
)

// GeoFilter restricts results to a radius around a point.
type GeoFilter struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// ArticleSearchFilters contains optional filters for article search.
type ArticleSearchFilters struct {
	Keywords     []string         // AND-ed, matched against title and description
	Category     *entity.Category // Optional: exact category
	SourceID     *int64           // Optional: filter by source ID
	From         *time.Time       // Optional: published_at >= From
	To           *time.Time       // Optional: published_at <= To
	Near         *GeoFilter       // Optional: only articles within the radius
	VerifiedOnly bool
	Limit        int // <= 0 means DefaultSearchLimit
}

// DefaultSearchLimit caps search results when no limit is given.
const DefaultSearchLimit = 50

// NearbyArticle is an article with its distance to the query point.
type NearbyArticle struct {
	Article    *entity.Article
	DistanceKm float64
}

// ArticleRepository persists normalized articles.
type ArticleRepository interface {
	Get(ctx context.Context, id int64) (*entity.Article, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// ExistsByURLBatch checks many URLs in one round trip.
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	// ExistsByTitleWithin reports whether the source stored an article with
	// the same canonical title key within the trailing window.
	ExistsByTitleWithin(ctx context.Context, sourceID int64, titleKey string, window time.Duration) (bool, error)
	// InsertMany stores articles, silently skipping URL conflicts, and
	// returns the number of rows inserted.
	InsertMany(ctx context.Context, articles []*entity.Article) (int, error)
	Nearby(ctx context.Context, lat, lng, radiusKm float64, limit int) ([]NearbyArticle, error)
	Search(ctx context.Context, filters ArticleSearchFilters) ([]*entity.Article, error)
}

// CommunityRepository reads first-party community content newest-first.
type CommunityRepository interface {
	RecentPosts(ctx context.Context, limit int) ([]entity.CommunityPost, error)
	RecentEvents(ctx context.Context, limit int) ([]entity.CommunityEvent, error)
	RecentReviews(ctx context.Context, limit int) ([]entity.CommunityReview, error)
}
