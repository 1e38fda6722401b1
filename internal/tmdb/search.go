package tmdb

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/LikkleOra/studio/internal/models"
)

// maxKeywordIDs bounds the with_keywords filter built from free text.
const maxKeywordIDs = 5

type keywordResponse struct {
	Results []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// SearchContent finds titles matching free text and genre names.
//
// With FilterAny the movie and TV catalogs are searched concurrently and the
// results interleaved. Any upstream failure fails the whole call; results from
// the other catalog are discarded.
func (c *Client) SearchContent(ctx context.Context, query string, genres []string, filter models.MediaFilter) ([]models.CatalogItem, error) {
	filter, err := models.ParseMediaFilter(string(filter))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMediaType, err)
	}
	query = strings.TrimSpace(query)
	genreIDs := c.genres.Resolve(genres)

	var keywordIDs []int
	if len(genreIDs) > 0 && query != "" {
		keywordIDs, err = c.lookupKeywords(ctx, query)
		if err != nil {
			return nil, err
		}
	}

	mediaTypes := filter.MediaTypes()
	results := make([][]models.CatalogItem, len(mediaTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, mt := range mediaTypes {
		g.Go(func() error {
			items, err := c.searchMediaType(gctx, mt, query, genreIDs, keywordIDs)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return Interleave(results[0], results[1], MaxResults), nil
}

// searchMediaType routes one catalog's query: discover when genres resolved,
// text search when only free text was given, popular otherwise.
func (c *Client) searchMediaType(ctx context.Context, mt models.MediaType, query string, genreIDs, keywordIDs []int) ([]models.CatalogItem, error) {
	params := url.Values{}
	params.Set("page", "1")

	var op, endpoint string
	switch {
	case len(genreIDs) > 0:
		op, endpoint = "discover_"+string(mt), "/discover/"+string(mt)
		params.Set("include_adult", "false")
		params.Set("sort_by", "popularity.desc")
		params.Set("with_genres", joinIDs(codesFor(mt, genreIDs)))
		if len(keywordIDs) > 0 {
			params.Set("with_keywords", joinIDs(keywordIDs))
		}
	case query != "":
		op, endpoint = "search_"+string(mt), "/search/"+string(mt)
		params.Set("include_adult", "false")
		params.Set("query", query)
	default:
		op, endpoint = "popular_"+string(mt), "/"+string(mt)+"/popular"
	}

	var page pageResponse
	if err := c.doGet(ctx, op, endpoint, params, &page); err != nil {
		return nil, err
	}

	items := c.normalizer.Normalize(page.Results, mt)
	if len(items) > MaxResults {
		items = items[:MaxResults]
	}
	slog.Debug("catalog search complete", "op", op, "results", len(items))
	return items, nil
}

// lookupKeywords resolves free text to keyword ids. An empty result is not an
// error: discover then runs on genres alone.
func (c *Client) lookupKeywords(ctx context.Context, query string) ([]int, error) {
	cacheKey := strings.ToLower(query)
	if c.keywords != nil {
		if ids, ok := c.keywords.GetKeywords(ctx, cacheKey); ok {
			slog.Debug("keyword cache hit", "query", query)
			return ids, nil
		}
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")

	var resp keywordResponse
	if err := c.doGet(ctx, "keywords", "/search/keyword", params, &resp); err != nil {
		return nil, err
	}

	ids := make([]int, 0, maxKeywordIDs)
	for _, kw := range resp.Results {
		if len(ids) == maxKeywordIDs {
			break
		}
		ids = append(ids, kw.ID)
	}

	if c.keywords != nil {
		c.keywords.SetKeywords(ctx, cacheKey, ids, c.keywordTTL)
	}
	return ids, nil
}

// GetRecommendations returns titles the catalog recommends for one title.
// Every result is stamped with mediaType; the endpoint does not reliably say.
func (c *Client) GetRecommendations(ctx context.Context, mediaID int, mediaType models.MediaType) ([]models.CatalogItem, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}
	if mediaID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidID, mediaID)
	}

	params := url.Values{}
	params.Set("page", "1")

	endpoint := fmt.Sprintf("/%s/%d/recommendations", mediaType, mediaID)
	var page pageResponse
	if err := c.doGet(ctx, "recommendations_"+string(mediaType), endpoint, params, &page); err != nil {
		return nil, err
	}
	return c.normalizer.Normalize(page.Results, mediaType), nil
}

// joinIDs joins codes with "|", which TMDB reads as any-of.
func joinIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, "|")
}
