package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"localfeed/internal/domain/entity"
	"localfeed/internal/observability/logging"
	"localfeed/internal/repository"
)

const (
	// DefaultCommunityBaseURL prefixes community permalinks.
	DefaultCommunityBaseURL = "https://community.localfeed.app"

	// DefaultPerKindLimit caps items read per community content kind.
	DefaultPerKindLimit = 10

	excerptLength = 200
)

// CommunityAdapter maps first-party posts, events and reviews into raw articles.
type CommunityAdapter struct {
	repo    repository.CommunityRepository
	baseURL string
	limit   int
}

// NewCommunityAdapter creates the internal-content adapter. Empty baseURL
// and non-positive limit select the defaults.
func NewCommunityAdapter(repo repository.CommunityRepository, baseURL string, limit int) *CommunityAdapter {
	if baseURL == "" {
		baseURL = DefaultCommunityBaseURL
	}
	if limit <= 0 {
		limit = DefaultPerKindLimit
	}
	return &CommunityAdapter{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
	}
}

// Kind implements Adapter.
func (a *CommunityAdapter) Kind() AdapterKind { return AdapterCommunity }

// Fetch reads each content kind newest-first. A kind that fails to load is
// logged and skipped; an error is returned only when all kinds fail.
func (a *CommunityAdapter) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	logger := logging.FromContext(ctx)
	out := []entity.RawArticle{}
	var errs []error

	posts, err := a.repo.RecentPosts(ctx, a.limit)
	if err != nil {
		errs = append(errs, fmt.Errorf("posts: %w", err))
	}
	for _, p := range posts {
		out = append(out, a.fromPost(src, p))
	}

	events, err := a.repo.RecentEvents(ctx, a.limit)
	if err != nil {
		errs = append(errs, fmt.Errorf("events: %w", err))
	}
	for _, e := range events {
		out = append(out, a.fromEvent(src, e))
	}

	reviews, err := a.repo.RecentReviews(ctx, a.limit)
	if err != nil {
		errs = append(errs, fmt.Errorf("reviews: %w", err))
	}
	for _, r := range reviews {
		out = append(out, a.fromReview(src, r))
	}

	if len(errs) == 3 {
		return []entity.RawArticle{}, errors.Join(errs...)
	}
	for _, err := range errs {
		logger.Warn("community content partially unavailable",
			slog.Int64("source_id", src.ID),
			slog.Any("error", err))
	}
	return out, nil
}

func (a *CommunityAdapter) fromPost(src *entity.Source, p entity.CommunityPost) entity.RawArticle {
	return entity.RawArticle{
		SourceID:    strconv.FormatInt(src.ID, 10),
		SourceName:  src.Name,
		Author:      p.Author,
		Title:       "Community Update: " + p.Title,
		Description: excerpt(p.Body),
		URL:         a.permalink("posts", p.ID),
		ImageURL:    p.ImageURL,
		PublishedAt: timestamp(p.CreatedAt),
		Content:     p.Body,
		Location:    p.Location,
	}
}

func (a *CommunityAdapter) fromEvent(src *entity.Source, e entity.CommunityEvent) entity.RawArticle {
	return entity.RawArticle{
		SourceID:    strconv.FormatInt(src.ID, 10),
		SourceName:  src.Name,
		Author:      e.Organizer,
		Title:       "Upcoming Event: " + e.Title,
		Description: excerpt(e.Description),
		URL:         a.permalink("events", e.ID),
		ImageURL:    e.ImageURL,
		PublishedAt: timestamp(e.CreatedAt),
		Content:     e.Description,
		Location:    e.Venue,
	}
}

func (a *CommunityAdapter) fromReview(src *entity.Source, r entity.CommunityReview) entity.RawArticle {
	return entity.RawArticle{
		SourceID:    strconv.FormatInt(src.ID, 10),
		SourceName:  src.Name,
		Author:      r.Author,
		Title:       fmt.Sprintf("Review: %s (%d/5)", r.BusinessName, r.Rating),
		Description: excerpt(r.Body),
		URL:         a.permalink("reviews", r.ID),
		PublishedAt: timestamp(r.CreatedAt),
		Content:     r.Body,
		Location:    r.Location,
	}
}

func (a *CommunityAdapter) permalink(kind string, id int64) string {
	return fmt.Sprintf("%s/%s/%d", a.baseURL, kind, id)
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// excerpt shortens s to at most excerptLength runes, ending in "...".
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= excerptLength {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:excerptLength-3])) + "..."
}
