// Package entity defines the core domain entities of the ingestion pipeline:
// sources, raw and normalized articles, and first-party community content,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// RawArticle is an un-normalized item as returned by a fetch adapter.
// Only Title is conventionally present; every other field may be empty.
type RawArticle struct {
	SourceID    string
	SourceName  string
	Author      string
	Title       string
	Description string
	URL         string
	ImageURL    string
	PublishedAt string
	Content     string
	// Location is an explicit place name supplied by the origin, if any.
	Location string
}

// Article is the canonical, store-ready article.
//
// Empty strings mean "absent" for Description, Content, URL, ImageURL,
// Author and LocationName. ID is zero until the store assigns one.
type Article struct {
	ID              int64
	SourceID        int64
	ExternalID      string
	Title           string
	Description     string
	Content         string
	URL             string
	ImageURL        string
	PublishedAt     *time.Time
	Author          string
	Category        Category
	Tags            []string
	Latitude        *float64
	Longitude       *float64
	LocationName    string
	RelevanceScore  float64
	EngagementScore float64
	Verified        bool
	Featured        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasCoordinates reports whether both latitude and longitude are set.
func (a *Article) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}

// SetLocation records resolved coordinates and the place name.
func (a *Article) SetLocation(lat, lng float64, name string) {
	a.Latitude = &lat
	a.Longitude = &lng
	a.LocationName = name
}

// Category is a topical label attached to an article.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryLocal         Category = "local"
	CategoryBusiness      Category = "business"
	CategoryTechnology    Category = "technology"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryPolitics      Category = "politics"
	CategoryScience       Category = "science"
	CategoryEnvironment   Category = "environment"
)
