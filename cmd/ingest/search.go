package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"localfeed/internal/domain/entity"
	pgRepo "localfeed/internal/infra/adapter/persistence/postgres"
	"localfeed/internal/infra/fetcher"
	"localfeed/internal/infra/scraper"
	"localfeed/internal/repository"
)

type searchResult struct {
	ID          int64    `json:"id,omitempty"`
	Title       string   `json:"title"`
	URL         string   `json:"url,omitempty"`
	Category    string   `json:"category,omitempty"`
	Location    string   `json:"location,omitempty"`
	PublishedAt string   `json:"published_at,omitempty"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
}

var (
	flagSearchSource   int64
	flagSearchLocal    bool
	flagSearchCategory string
	flagSearchLat      float64
	flagSearchLng      float64
	flagSearchRadius   float64
	flagSearchLimit    int
	flagSearchVerified bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query a keyed provider or the stored articles",
	Long: `With --source, forward the query to that source's keyed provider.
With --local, search stored articles by keywords, category, time and
distance. Giving only --lat/--lng/--radius lists the nearest articles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		query := strings.TrimSpace(strings.Join(args, " "))

		var results []searchResult
		var err error
		if flagSearchSource > 0 {
			if query == "" {
				return errors.New("a query is required with --source")
			}
			results, err = searchProvider(ctx, flagSearchSource, query)
		} else {
			results, err = searchLocal(ctx, localFilters(query))
		}
		if err != nil {
			return err
		}
		return printResults(cmd.OutOrStdout(), results, flagOutput)
	},
}

func init() {
	f := searchCmd.Flags()
	f.Int64Var(&flagSearchSource, "source", 0, "query a keyed provider through this source")
	f.BoolVar(&flagSearchLocal, "local", false, "search stored articles")
	f.StringVar(&flagSearchCategory, "category", "", "only this category (local)")
	f.Float64Var(&flagSearchLat, "lat", 0, "latitude of the search center (local)")
	f.Float64Var(&flagSearchLng, "lng", 0, "longitude of the search center (local)")
	f.Float64Var(&flagSearchRadius, "radius", 0, "radius in kilometers (local)")
	f.IntVar(&flagSearchLimit, "limit", 20, "maximum results (local)")
	f.BoolVar(&flagSearchVerified, "verified", false, "only verified articles (local)")
	searchCmd.MarkFlagsMutuallyExclusive("source", "local")
	searchCmd.MarkFlagsOneRequired("source", "local")
}

func localFilters(query string) repository.ArticleSearchFilters {
	filters := repository.ArticleSearchFilters{
		Keywords:     strings.Fields(query),
		VerifiedOnly: flagSearchVerified,
		Limit:        flagSearchLimit,
	}
	if flagSearchCategory != "" {
		c := entity.Category(strings.ToLower(flagSearchCategory))
		filters.Category = &c
	}
	if flagSearchRadius > 0 {
		filters.Near = &repository.GeoFilter{Latitude: flagSearchLat, Longitude: flagSearchLng, RadiusKm: flagSearchRadius}
	}
	return filters
}

func searchProvider(ctx context.Context, sourceID int64, query string) ([]searchResult, error) {
	catalog, err := loadCatalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	database, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close() }()

	src, err := pgRepo.NewSourceRepo(database).Get(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if src.Provider != entity.ProviderNewsAPI {
		return nil, fmt.Errorf("source %d (%s) is not a keyed provider", src.ID, src.Provider)
	}

	client := fetcher.NewGuardedClient(fetcher.ClientOptions{Timeout: 30 * time.Second, MaxRedirects: 5})
	raws, err := scraper.NewNewsAPIAdapter(client, catalog, nil).Everything(ctx, src, query)
	if err != nil {
		return nil, err
	}

	results := make([]searchResult, 0, len(raws))
	for _, r := range raws {
		results = append(results, searchResult{
			Title:       r.Title,
			URL:         r.URL,
			Location:    r.Location,
			PublishedAt: r.PublishedAt,
		})
	}
	return results, nil
}

// searchLocal uses the nearest-first query when only a point is given,
// and the filtered search otherwise.
func searchLocal(ctx context.Context, filters repository.ArticleSearchFilters) ([]searchResult, error) {
	database, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = database.Close() }()

	repo := pgRepo.NewArticleRepo(database)
	if near := filters.Near; near != nil && len(filters.Keywords) == 0 && filters.Category == nil && !filters.VerifiedOnly {
		nearby, err := repo.Nearby(ctx, near.Latitude, near.Longitude, near.RadiusKm, filters.Limit)
		if err != nil {
			return nil, err
		}
		results := make([]searchResult, 0, len(nearby))
		for _, n := range nearby {
			r := toSearchResult(n.Article)
			d := n.DistanceKm
			r.DistanceKm = &d
			results = append(results, r)
		}
		return results, nil
	}

	articles, err := repo.Search(ctx, filters)
	if err != nil {
		return nil, err
	}
	results := make([]searchResult, 0, len(articles))
	for _, a := range articles {
		results = append(results, toSearchResult(a))
	}
	return results, nil
}

func toSearchResult(a *entity.Article) searchResult {
	r := searchResult{
		ID:       a.ID,
		Title:    a.Title,
		URL:      a.URL,
		Category: string(a.Category),
		Location: a.LocationName,
	}
	if a.PublishedAt != nil {
		r.PublishedAt = a.PublishedAt.Format(time.RFC3339)
	}
	return r
}

func printResults(w io.Writer, results []searchResult, output string) error {
	if output == "json" {
		return printJSON(w, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return nil
	}
	for _, r := range results {
		line := r.Title
		if r.DistanceKm != nil {
			line = fmt.Sprintf("%s (%.1f km)", line, *r.DistanceKm)
		}
		if r.Location != "" {
			line += " [" + r.Location + "]"
		}
		fmt.Fprintln(w, line)
		if r.URL != "" {
			fmt.Fprintf(w, "    %s\n", r.URL)
		}
	}
	return nil
}
