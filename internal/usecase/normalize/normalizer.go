// Package normalize converts raw adapter output into canonical articles.
//
// Normalization is total: malformed fields are replaced by safe defaults
// (a placeholder title, or an absent value) and never produce errors.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"localfeed/internal/config"
	"localfeed/internal/domain/entity"
)

const (
	// PlaceholderTitle replaces titles that are empty after cleaning.
	PlaceholderTitle = "Untitled article"

	maxDescriptionLength = 500
	maxContentLength     = 2000
)

var bylinePrefix = regexp.MustCompile(`(?i)^by(?:\s+|$)`)

// Normalizer turns a RawArticle and its Source into an entity.Article.
type Normalizer struct {
	prefixPattern *regexp.Regexp
	wirePattern   *regexp.Regexp
	outlets       []string
	firstPass     []config.KeywordSet
	now           func() time.Time
}

// New builds a Normalizer from the catalog's prefix, wire service,
// outlet and first-pass keyword tables.
func New(c *config.Catalog) *Normalizer {
	n := &Normalizer{now: time.Now}

	if len(c.LivePrefixes) > 0 {
		quoted := make([]string, len(c.LivePrefixes))
		for i, p := range c.LivePrefixes {
			quoted[i] = regexp.QuoteMeta(p)
		}
		n.prefixPattern = regexp.MustCompile(`(?i)^(?:` + strings.Join(quoted, "|") + `)\s*:\s*`)
	}

	if len(c.WireServices) > 0 {
		wires := append([]string(nil), c.WireServices...)
		// Longer names first so "Associated Press" is not shadowed by "AP".
		sort.SliceStable(wires, func(i, j int) bool { return len(wires[i]) > len(wires[j]) })
		quoted := make([]string, len(wires))
		for i, w := range wires {
			quoted[i] = regexp.QuoteMeta(w)
		}
		n.wirePattern = regexp.MustCompile(`(?i)[\s,;|/\-\x{2013}\x{2014}]*\(?\b(?:` + strings.Join(quoted, "|") + `)\b\)?\s*$`)
	}

	for _, o := range c.VerifiedOutlets {
		n.outlets = append(n.outlets, strings.ToLower(o))
	}
	for _, set := range c.FirstPassCategories {
		n.firstPass = append(n.firstPass, KeywordSetLower(set))
	}
	return n
}

// WithClock overrides the clock used for CreatedAt/UpdatedAt.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Normalize builds the canonical article for raw, fetched from src.
func (n *Normalizer) Normalize(raw entity.RawArticle, src *entity.Source) *entity.Article {
	now := n.now().UTC()

	headline := n.Headline(raw.Title)
	description := truncate(CleanText(raw.Description), maxDescriptionLength)
	content := truncate(CleanText(raw.Content), maxContentLength)

	a := &entity.Article{
		SourceID:     src.ID,
		Title:        sentenceCase(headline),
		Description:  description,
		Content:      content,
		URL:          CleanURL(raw.URL),
		ImageURL:     CleanURL(raw.ImageURL),
		PublishedAt:  ParseTimestamp(raw.PublishedAt),
		Author:       n.CleanAuthor(raw.Author),
		LocationName: collapseSpace(raw.Location),
		Verified:     n.IsVerified(src.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if a.Title == "" {
		a.Title = PlaceholderTitle
	}

	a.Category = n.guessCategory(a.Title, a.Description, a.Content)
	a.Tags = ExtractTags(headline, description, content)
	a.ExternalID = ExternalID(a.URL, src.Name, a.Title)
	return a
}

// Headline is title with whitespace collapsed and prefixes stripped,
// before sentence casing.
func (n *Normalizer) Headline(title string) string {
	return n.stripPrefixes(collapseSpace(title))
}

// CleanTitle applies title normalization and falls back to the placeholder.
func (n *Normalizer) CleanTitle(title string) string {
	t := sentenceCase(n.Headline(title))
	if t == "" {
		return PlaceholderTitle
	}
	return t
}

func (n *Normalizer) stripPrefixes(title string) string {
	if n.prefixPattern == nil {
		return title
	}
	for {
		stripped := n.prefixPattern.ReplaceAllString(title, "")
		if stripped == title {
			return title
		}
		title = stripped
	}
}

// CleanAuthor trims the byline, strips trailing wire-service credits and a
// leading "By". An author that is empty afterwards is absent.
func (n *Normalizer) CleanAuthor(author string) string {
	author = collapseSpace(author)
	for n.wirePattern != nil && author != "" {
		stripped := strings.TrimSpace(n.wirePattern.ReplaceAllString(author, ""))
		if stripped == author {
			break
		}
		author = stripped
	}
	author = strings.TrimRight(author, " ,;-|/")
	return strings.TrimSpace(bylinePrefix.ReplaceAllString(author, ""))
}

// IsVerified reports whether the source name contains a recognized outlet.
func (n *Normalizer) IsVerified(sourceName string) bool {
	name := strings.ToLower(sourceName)
	if name == "" {
		return false
	}
	for _, o := range n.outlets {
		if strings.Contains(name, o) {
			return true
		}
	}
	return false
}

func (n *Normalizer) guessCategory(title, description, content string) entity.Category {
	text := strings.ToLower(title + " " + description + " " + content)
	for _, set := range n.firstPass {
		for _, kw := range set.Keywords {
			if strings.Contains(text, kw) {
				return set.Category
			}
		}
	}
	return entity.CategoryGeneral
}

// KeywordSetLower returns a copy of set with lowercased, trimmed keywords.
func KeywordSetLower(set config.KeywordSet) config.KeywordSet {
	out := config.KeywordSet{Category: set.Category, Keywords: make([]string, 0, len(set.Keywords))}
	for _, kw := range set.Keywords {
		out.Keywords = append(out.Keywords, strings.ToLower(strings.TrimSpace(kw)))
	}
	return out
}

func sentenceCase(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
