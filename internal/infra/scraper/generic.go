package scraper

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"localfeed/internal/domain/entity"
)

// envelopePaths are tried in order; "@this" is a bare top-level array.
var envelopePaths = []string{"articles", "data.articles", "@this", "results"}

// GenericJSONAdapter reads any endpoint returning a list of news-like
// objects in one of the common envelope shapes.
type GenericJSONAdapter struct {
	http jsonClient
}

// NewGenericJSONAdapter creates the generic adapter.
func NewGenericJSONAdapter(client *http.Client) *GenericJSONAdapter {
	return &GenericJSONAdapter{http: newJSONClient(client, "generic-json")}
}

// Kind implements Adapter.
func (a *GenericJSONAdapter) Kind() AdapterKind { return AdapterGeneric }

// Fetch issues one GET, sending the API key as a bearer token when present.
func (a *GenericJSONAdapter) Fetch(ctx context.Context, src *entity.Source) ([]entity.RawArticle, error) {
	header := http.Header{}
	if src.APIKey != "" {
		header.Set("Authorization", "Bearer "+src.APIKey)
	}

	body, err := a.http.get(ctx, src.Endpoint, header)
	if err != nil {
		return []entity.RawArticle{}, err
	}
	items, err := ExtractItems(body)
	if err != nil {
		return []entity.RawArticle{}, err
	}
	return mapItems(items, src.Name), nil
}

// ExtractItems returns the article list of the first envelope shape that
// matches body.
func ExtractItems(body []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrUnexpectedEnvelope)
	}
	root := gjson.ParseBytes(body)
	for _, path := range envelopePaths {
		if v := root.Get(path); v.IsArray() {
			return v.Array(), nil
		}
	}
	return nil, ErrUnexpectedEnvelope
}
