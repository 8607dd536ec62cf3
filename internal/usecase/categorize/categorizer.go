// Package categorize assigns a confidence-weighted category to an article
// by counting whole-word keyword occurrences.
package categorize

import (
	"regexp"
	"strings"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
)

// MinConfidence is the confidence a winning category must exceed.
const MinConfidence = 0.3

// Result is the outcome of categorization.
type Result struct {
	Category        entity.Category
	Confidence      float64
	MatchedKeywords []string
}

type keyword struct {
	word    string
	pattern *regexp.Regexp
}

type category struct {
	name     entity.Category
	keywords []keyword
}

// Categorizer is safe for concurrent use.
type Categorizer struct {
	categories []category
}

// New compiles the catalog's category table. Table order breaks ties.
func New(c *config.Catalog) *Categorizer {
	cat := &Categorizer{}
	for _, set := range c.Categories {
		entry := category{name: set.Category}
		for _, kw := range set.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			entry.keywords = append(entry.keywords, keyword{
				word:    kw,
				pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`),
			})
		}
		cat.categories = append(cat.categories, entry)
	}
	return cat
}

// Categorize scores the article's title, description and content. It
// returns false when no category matches or the winner's confidence is at
// or below MinConfidence.
func (c *Categorizer) Categorize(a *entity.Article) (Result, bool) {
	return c.CategorizeText(a.Title + " " + a.Description + " " + a.Content)
}

// CategorizeText is Categorize over arbitrary text.
func (c *Categorizer) CategorizeText(text string) (Result, bool) {
	text = strings.ToLower(text)

	var best Result
	bestCount := 0
	for _, cat := range c.categories {
		count := 0
		var matched []string
		for _, kw := range cat.keywords {
			n := len(kw.pattern.FindAllStringIndex(text, -1))
			if n > 0 {
				count += n
				matched = append(matched, kw.word)
			}
		}
		if count > bestCount {
			bestCount = count
			best = Result{Category: cat.name, MatchedKeywords: matched}
		}
	}
	if bestCount == 0 {
		return Result{}, false
	}

	best.Confidence = min(float64(bestCount)/10, 1.0)
	if best.Confidence <= MinConfidence {
		return Result{}, false
	}
	return best, true
}
