package entity

import "time"

// CommunityPost is a first-party post written by a community member.
type CommunityPost struct {
	ID        int64
	Title     string
	Body      string
	Author    string
	ImageURL  string
	Location  string
	CreatedAt time.Time
}

// CommunityEvent is a first-party event listing.
type CommunityEvent struct {
	ID          int64
	Title       string
	Description string
	Organizer   string
	Venue       string
	ImageURL    string
	StartsAt    time.Time
	CreatedAt   time.Time
}

// CommunityReview is a first-party review of a local business.
type CommunityReview struct {
	ID           int64
	BusinessName string
	Rating       int
	Body         string
	Author       string
	Location     string
	CreatedAt    time.Time
}
