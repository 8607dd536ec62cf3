// Package geo resolves place names to coordinates with a static gazetteer
// and provides great-circle distance helpers for radius queries.
package geo

import (
	"strings"

	"localfeed/internal/config"
)

// Gazetteer is an exact-match, case-insensitive place lookup. When two
// entries share a normalized name the first one listed wins.
type Gazetteer struct {
	index map[string]config.Place
}

// NewGazetteer indexes places in table order.
func NewGazetteer(places []config.Place) *Gazetteer {
	g := &Gazetteer{index: make(map[string]config.Place, len(places))}
	for _, p := range places {
		key := NormalizeName(p.Name)
		if key == "" {
			continue
		}
		if _, exists := g.index[key]; !exists {
			g.index[key] = p
		}
	}
	return g
}

// Lookup resolves name against the gazetteer.
func (g *Gazetteer) Lookup(name string) (config.Place, bool) {
	p, ok := g.index[NormalizeName(name)]
	return p, ok
}

// Len returns the number of distinct names.
func (g *Gazetteer) Len() int {
	return len(g.index)
}

// NormalizeName lowercases, collapses whitespace and trims surrounding
// punctuation from a place name.
func NormalizeName(name string) string {
	name = strings.ToLower(strings.Join(strings.Fields(name), " "))
	return strings.Trim(name, ".,;:!?'\"()")
}
