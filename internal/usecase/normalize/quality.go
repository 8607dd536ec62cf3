package normalize

import (
	"unicode/utf8"

	"localfeed/internal/domain/entity"
)

// DefaultQualityThreshold is the admission threshold used when none is configured.
const DefaultQualityThreshold = 0.3

// QualityScore is a pre-storage admission score built from weighted
// presence checks, capped at 1.0. It is distinct from the relevance score.
func QualityScore(a *entity.Article) float64 {
	// Points are hundredths so sums compare exactly against thresholds.
	points := 0
	if utf8.RuneCountInString(a.Title) > 10 {
		points += 20
	}
	if utf8.RuneCountInString(a.Description) > 50 {
		points += 20
	}
	if a.Author != "" {
		points += 10
	}
	if a.ImageURL != "" {
		points += 10
	}
	if a.Verified {
		points += 20
	}
	if a.URL != "" {
		points += 10
	}
	if utf8.RuneCountInString(a.Content) > 100 {
		points += 10
	}
	if points > 100 {
		points = 100
	}
	return float64(points) / 100
}

// FilterByQuality keeps articles scoring at or above threshold and
// reports how many were dropped.
func FilterByQuality(articles []*entity.Article, threshold float64) ([]*entity.Article, int) {
	kept := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if QualityScore(a) >= threshold {
			kept = append(kept, a)
		}
	}
	return kept, len(articles) - len(kept)
}
