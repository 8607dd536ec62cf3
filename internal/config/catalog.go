// Package config holds the versioned static reference data used by the
// ingestion pipeline: keyword tables, the city gazetteer, country codes,
// outlet lists, provider hosts, and placeholder sample articles.
//
// The default catalog is embedded at build time. A replacement YAML file
// can be supplied at startup to swap in a larger or localized data set
// without code changes.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"localfeed/internal/domain/entity"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// KeywordSet associates a category with its keyword list.
type KeywordSet struct {
	Category entity.Category `yaml:"category"`
	Keywords []string        `yaml:"keywords"`
}

// Place is a gazetteer entry.
type Place struct {
	Name string  `yaml:"name"`
	Lat  float64 `yaml:"lat"`
	Lng  float64 `yaml:"lng"`
}

// SampleArticle is a canned article served by the placeholder provider.
type SampleArticle struct {
	SourceName  string `yaml:"source_name"`
	Author      string `yaml:"author"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
	ImageURL    string `yaml:"image_url"`
	PublishedAt string `yaml:"published_at"`
	Content     string `yaml:"content"`
	Location    string `yaml:"location"`
}

// Raw converts the sample into the adapter output shape.
func (s SampleArticle) Raw() entity.RawArticle {
	return entity.RawArticle{
		SourceName:  s.SourceName,
		Author:      s.Author,
		Title:       s.Title,
		Description: s.Description,
		URL:         s.URL,
		ImageURL:    s.ImageURL,
		PublishedAt: s.PublishedAt,
		Content:     s.Content,
		Location:    s.Location,
	}
}

// Catalog is the full set of static tables.
type Catalog struct {
	Version             int                  `yaml:"version"`
	LivePrefixes        []string             `yaml:"live_prefixes"`
	WireServices        []string             `yaml:"wire_services"`
	VerifiedOutlets     []string             `yaml:"verified_outlets"`
	FirstPassCategories []KeywordSet         `yaml:"first_pass_categories"`
	Categories          []KeywordSet         `yaml:"categories"`
	DefaultCountry      string               `yaml:"default_country"`
	CountryCodes        map[string]string    `yaml:"country_codes"`
	Gazetteer           []Place              `yaml:"gazetteer"`
	Providers           entity.ProviderHosts `yaml:"providers"`
	PlaceholderArticles []SampleArticle      `yaml:"placeholder_articles"`
}

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog from path, or returns the embedded default
// when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog for structural defects.
func (c *Catalog) Validate() error {
	var errs []error
	if len(c.Categories) == 0 {
		errs = append(errs, errors.New("catalog: categories table is empty"))
	}
	for _, set := range append(append([]KeywordSet{}, c.FirstPassCategories...), c.Categories...) {
		if set.Category == "" {
			errs = append(errs, errors.New("catalog: keyword set without category"))
		}
		for _, kw := range set.Keywords {
			if strings.TrimSpace(kw) == "" {
				errs = append(errs, fmt.Errorf("catalog: empty keyword in category %s", set.Category))
			}
		}
	}
	for _, p := range c.Gazetteer {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, errors.New("catalog: gazetteer entry without name"))
			continue
		}
		if !entity.ValidCoordinates(p.Lat, p.Lng) {
			errs = append(errs, fmt.Errorf("catalog: gazetteer entry %q has out-of-range coordinates", p.Name))
		}
	}
	if c.DefaultCountry == "" {
		errs = append(errs, errors.New("catalog: default_country is required"))
	}
	return errors.Join(errs...)
}

// CountryCode translates a geographic bias name into a two-letter country
// code, falling back to DefaultCountry on a miss.
func (c *Catalog) CountryCode(bias string) string {
	if code, ok := c.CountryCodes[strings.ToLower(strings.TrimSpace(bias))]; ok {
		return code
	}
	return c.DefaultCountry
}
