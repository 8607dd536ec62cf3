// Package score computes the relevance score stored with each article.
package score

import (
	"unicode/utf8"

	"localfeed/internal/domain/entity"
)

// Score combines category confidence, source type and content
// completeness into a relevance score in [0,1].
//
//	0.5 base
//	+ categoryConfidence * 0.3
//	+ 0.2 for local sources, 0.1 otherwise
//	+ 0.1 if the description is longer than 100 characters
//	+ 0.05 if an image is present
//	+ 0.05 if an author is present
//	+ 0.1 if coordinates are present
func Score(a *entity.Article, src *entity.Source, categoryConfidence float64) float64 {
	categoryConfidence = clamp(categoryConfidence)

	s := 0.5 + categoryConfidence*0.3
	if src != nil && src.Kind == entity.SourceKindLocal {
		s += 0.2
	} else {
		s += 0.1
	}
	if utf8.RuneCountInString(a.Description) > 100 {
		s += 0.1
	}
	if a.ImageURL != "" {
		s += 0.05
	}
	if a.Author != "" {
		s += 0.05
	}
	if a.HasCoordinates() {
		s += 0.1
	}
	return clamp(s)
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
