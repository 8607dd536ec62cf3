package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"localfeed/internal/domain/entity"
	"localfeed/internal/repository"
)

type CommunityRepo struct{ db *sql.DB }

func NewCommunityRepo(db *sql.DB) repository.CommunityRepository {
	return &CommunityRepo{db: db}
}

func (repo *CommunityRepo) RecentPosts(ctx context.Context, limit int) ([]entity.CommunityPost, error) {
	defer recordQuery("community_posts", time.Now())
	const query = `
SELECT id, title, body, author, image_url, location, created_at
FROM community_posts
ORDER BY created_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentPosts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]entity.CommunityPost, 0)
	for rows.Next() {
		var p entity.CommunityPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Author, &p.ImageURL, &p.Location, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("RecentPosts: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (repo *CommunityRepo) RecentEvents(ctx context.Context, limit int) ([]entity.CommunityEvent, error) {
	defer recordQuery("community_events", time.Now())
	const query = `
SELECT id, title, description, organizer, venue, image_url, starts_at, created_at
FROM community_events
ORDER BY created_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentEvents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]entity.CommunityEvent, 0)
	for rows.Next() {
		var (
			e        entity.CommunityEvent
			startsAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Organizer, &e.Venue,
			&e.ImageURL, &startsAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("RecentEvents: %w", err)
		}
		e.StartsAt = startsAt.Time
		events = append(events, e)
	}
	return events, rows.Err()
}

func (repo *CommunityRepo) RecentReviews(ctx context.Context, limit int) ([]entity.CommunityReview, error) {
	defer recordQuery("community_reviews", time.Now())
	const query = `
SELECT id, business_name, rating, body, author, location, created_at
FROM community_reviews
ORDER BY created_at DESC
LIMIT $1`
	rows, err := repo.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentReviews: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]entity.CommunityReview, 0)
	for rows.Next() {
		var r entity.CommunityReview
		if err := rows.Scan(&r.ID, &r.BusinessName, &r.Rating, &r.Body, &r.Author, &r.Location, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("RecentReviews: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
