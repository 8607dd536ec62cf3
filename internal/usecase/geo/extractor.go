package geo

import (
	"regexp"
	"strings"

	"localfeed/internal/domain/entity"
)

// Confidence assigned per evidence source.
const (
	ConfidenceText     = 0.7
	ConfidenceExplicit = 0.9
	ConfidenceTag      = 0.8
)

// maxPhraseWords bounds the capitalized phrase captured after a preposition.
const maxPhraseWords = 4

// Prepositions match in any case; the phrase after them must be capitalized.
var placePattern = regexp.MustCompile(`(?i:\b(?:in|at|from))\s+([A-Z][\p{L}'.\-]*(?:\s+[A-Z][\p{L}'.\-]*){0,3})`)

// Location is a resolved place.
type Location struct {
	Latitude   float64
	Longitude  float64
	Name       string
	Confidence float64
}

// Extractor finds an article's location from its text, its explicit
// location field, or its tags, in that order.
type Extractor struct {
	gazetteer *Gazetteer
}

// NewExtractor returns an Extractor backed by g.
func NewExtractor(g *Gazetteer) *Extractor {
	return &Extractor{gazetteer: g}
}

// Extract returns the first location found, trying free text (0.7), the
// explicit location name (0.9), then tags (0.8).
//
// headline is the title as published. Stored titles are sentence-cased,
// which hides place names from the capitalized-phrase scan, so the
// headline is scanned in place of a.Title when given.
func (e *Extractor) Extract(a *entity.Article, headline string) (Location, bool) {
	if headline == "" {
		headline = a.Title
	}
	text := headline + ". " + a.Description + ". " + a.Content
	if loc, ok := e.FromText(text); ok {
		return loc, true
	}
	if a.LocationName != "" {
		if loc, ok := e.resolve(a.LocationName, ConfidenceExplicit); ok {
			return loc, true
		}
	}
	for _, tag := range a.Tags {
		if loc, ok := e.resolve(tag, ConfidenceTag); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// FromText scans "in|at|from <Capitalized Phrase>" occurrences in order.
// For each phrase the longest leading run of words that resolves wins.
func (e *Extractor) FromText(text string) (Location, bool) {
	for _, m := range placePattern.FindAllStringSubmatch(text, -1) {
		words := strings.Fields(m[1])
		if len(words) > maxPhraseWords {
			words = words[:maxPhraseWords]
		}
		for n := len(words); n > 0; n-- {
			if loc, ok := e.resolve(strings.Join(words[:n], " "), ConfidenceText); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

func (e *Extractor) resolve(name string, confidence float64) (Location, bool) {
	p, ok := e.gazetteer.Lookup(name)
	if !ok || !ValidCoordinates(p.Lat, p.Lng) {
		return Location{}, false
	}
	return Location{Latitude: p.Lat, Longitude: p.Lng, Name: p.Name, Confidence: confidence}, true
}
