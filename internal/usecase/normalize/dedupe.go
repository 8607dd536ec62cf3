package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"localfeed/internal/domain/entity"
)

// TitleKey canonicalizes a title for duplicate detection: lowercased,
// punctuation removed, whitespace collapsed. Matching on the key is exact.
func TitleKey(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return collapseSpace(b.String())
}

// Dedupe collapses articles sharing a source and canonical title within
// one batch, keeping the first occurrence.
func Dedupe(articles []*entity.Article) []*entity.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		key := strconv.FormatInt(a.SourceID, 10) + "|" + TitleKey(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
