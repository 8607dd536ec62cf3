package normalize

import (
	"regexp"
	"strings"
)

const (
	maxTags    = 10
	maxPhrases = 5
)

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	// Two or more consecutive capitalized words: a crude proper-noun heuristic.
	phrasePattern = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
)

// ExtractTags returns the hashtags found in the given texts followed by up
// to five capitalized multi-word phrases, deduplicated case-insensitively
// and capped at ten.
func ExtractTags(texts ...string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0, maxTags)
	add := func(tag string) bool {
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			return false
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
		return true
	}

	for _, text := range texts {
		for _, m := range hashtagPattern.FindAllStringSubmatch(text, -1) {
			if len(tags) == maxTags {
				return tags
			}
			add(strings.ToLower(m[1]))
		}
	}

	phrases := 0
	for _, text := range texts {
		for _, m := range phrasePattern.FindAllString(text, -1) {
			if phrases == maxPhrases || len(tags) == maxTags {
				return tags
			}
			if add(m) {
				phrases++
			}
		}
	}
	return tags
}
