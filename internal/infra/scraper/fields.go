package scraper

import (
	"github.com/tidwall/gjson"

	"localfeed/internal/domain/entity"
)

// Field aliases seen across news providers, in lookup order.
var (
	titleAliases       = []string{"title", "headline", "name"}
	descriptionAliases = []string{"description", "summary", "abstract", "snippet"}
	urlAliases         = []string{"url", "link", "webUrl"}
	imageAliases       = []string{"urlToImage", "image", "imageUrl", "image_url", "thumbnail"}
	publishedAliases   = []string{"publishedAt", "published_at", "pubDate", "date", "webPublicationDate"}
	authorAliases      = []string{"author", "byline", "creator"}
	contentAliases     = []string{"content", "body", "text"}
	locationAliases    = []string{"location", "city", "place"}
)

func firstString(item gjson.Result, paths []string) string {
	for _, p := range paths {
		v := item.Get(p)
		if v.Exists() && v.Type != gjson.JSON && v.Type != gjson.Null {
			if s := v.String(); s != "" {
				return s
			}
		}
	}
	return ""
}

// mapItem converts one provider item into a RawArticle.
func mapItem(item gjson.Result, fallbackSource string) entity.RawArticle {
	raw := entity.RawArticle{
		Author:      firstString(item, authorAliases),
		Title:       firstString(item, titleAliases),
		Description: firstString(item, descriptionAliases),
		URL:         firstString(item, urlAliases),
		ImageURL:    firstString(item, imageAliases),
		PublishedAt: firstString(item, publishedAliases),
		Content:     firstString(item, contentAliases),
		Location:    firstString(item, locationAliases),
	}

	src := item.Get("source")
	switch {
	case src.IsObject():
		raw.SourceID = src.Get("id").String()
		raw.SourceName = src.Get("name").String()
	case src.Type == gjson.String:
		raw.SourceName = src.String()
	}
	if raw.SourceName == "" {
		raw.SourceName = fallbackSource
	}
	return raw
}

func mapItems(items []gjson.Result, fallbackSource string) []entity.RawArticle {
	out := make([]entity.RawArticle, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		out = append(out, mapItem(it, fallbackSource))
	}
	return out
}
