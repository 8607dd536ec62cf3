package scraper_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localfeed/internal/domain/entity"
	"localfeed/internal/infra/scraper"
)

type stubCommunityRepo struct {
	posts      []entity.CommunityPost
	events     []entity.CommunityEvent
	reviews    []entity.CommunityReview
	postsErr   error
	eventsErr  error
	reviewsErr error
	limits     []int
}

func (s *stubCommunityRepo) RecentPosts(_ context.Context, limit int) ([]entity.CommunityPost, error) {
	s.limits = append(s.limits, limit)
	return s.posts, s.postsErr
}

func (s *stubCommunityRepo) RecentEvents(_ context.Context, limit int) ([]entity.CommunityEvent, error) {
	s.limits = append(s.limits, limit)
	return s.events, s.eventsErr
}

func (s *stubCommunityRepo) RecentReviews(_ context.Context, limit int) ([]entity.CommunityReview, error) {
	s.limits = append(s.limits, limit)
	return s.reviews, s.reviewsErr
}

func TestCommunityAdapter_Fetch(t *testing.T) {
	created := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubCommunityRepo{
		posts: []entity.CommunityPost{{
			ID: 7, Title: "Park cleanup", Body: strings.Repeat("word ", 80),
			Author: "Ana", Location: "Austin", CreatedAt: created,
		}},
		events: []entity.CommunityEvent{{
			ID: 3, Title: "Jazz night", Description: "Live music", Organizer: "Arts Club",
			Venue: "Denver", CreatedAt: created,
		}},
		reviews: []entity.CommunityReview{{
			ID: 9, BusinessName: "Corner Cafe", Rating: 4, Body: "Great coffee", Author: "Lee",
		}},
	}

	a := scraper.NewCommunityAdapter(repo, "https://community.example/", 0)
	assert.Equal(t, scraper.AdapterCommunity, a.Kind())

	items, err := a.Fetch(context.Background(), &entity.Source{ID: 5, Name: "Community", Kind: entity.SourceKindLocal})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{10, 10, 10}, repo.limits)

	post := items[0]
	assert.Equal(t, "Community Update: Park cleanup", post.Title)
	assert.Equal(t, "https://community.example/posts/7", post.URL)
	assert.Equal(t, "2026-04-01T12:00:00Z", post.PublishedAt)
	assert.Equal(t, "5", post.SourceID)
	assert.Equal(t, "Community", post.SourceName)
	assert.Equal(t, "Austin", post.Location)
	assert.LessOrEqual(t, utf8.RuneCountInString(post.Description), 200)
	assert.True(t, strings.HasSuffix(post.Description, "..."))

	event := items[1]
	assert.Equal(t, "Upcoming Event: Jazz night", event.Title)
	assert.Equal(t, "Arts Club", event.Author)
	assert.Equal(t, "Denver", event.Location)
	assert.Equal(t, "Live music", event.Description)

	review := items[2]
	assert.Equal(t, "Review: Corner Cafe (4/5)", review.Title)
	assert.Equal(t, "https://community.example/reviews/9", review.URL)
	assert.Empty(t, review.PublishedAt)
}

func TestCommunityAdapter_Fetch_PartialFailure(t *testing.T) {
	repo := &stubCommunityRepo{
		postsErr: errors.New("db down"),
		events:   []entity.CommunityEvent{{ID: 1, Title: "Fair"}},
	}
	items, err := scraper.NewCommunityAdapter(repo, "", 3).Fetch(context.Background(), &entity.Source{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, scraper.DefaultCommunityBaseURL+"/events/1", items[0].URL)
	assert.Equal(t, []int{3, 3, 3}, repo.limits)
}

func TestCommunityAdapter_Fetch_AllKindsFail(t *testing.T) {
	boom := errors.New("db down")
	repo := &stubCommunityRepo{postsErr: boom, eventsErr: boom, reviewsErr: boom}
	items, err := scraper.NewCommunityAdapter(repo, "", 0).Fetch(context.Background(), &entity.Source{})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, items)
}
