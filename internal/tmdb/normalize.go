package tmdb

import (
	"log/slog"
	"strings"

	"github.com/LikkleOra/studio/internal/models"
)

// MaxResults caps each media type's result list and the merged list.
const MaxResults = 20

// RawItem is a movie-shaped or show-shaped result as TMDB returns it.
// Title and Name are pointers so that an absent field can be told apart
// from an empty one.
type RawItem struct {
	ID           int     `json:"id"`
	Title        *string `json:"title"`
	Name         *string `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	MediaType    string  `json:"media_type"`
	GenreIDs     []int   `json:"genre_ids"`
}

// pageResponse is the envelope shared by search, discover, popular and
// recommendations responses.
type pageResponse struct {
	Page         int       `json:"page"`
	Results      []RawItem `json:"results"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
}

// Normalizer turns raw catalog results into CatalogItems.
type Normalizer struct {
	posterBase string
}

// NewNormalizer builds poster URLs as <imageBaseURL>/<posterSize>/<poster_path>.
func NewNormalizer(imageBaseURL, posterSize string) *Normalizer {
	base := strings.TrimRight(imageBaseURL, "/")
	if size := strings.Trim(posterSize, "/"); size != "" {
		base += "/" + size
	}
	return &Normalizer{posterBase: base}
}

// ResolveMediaType applies the discriminator rule: an explicit media_type of
// movie or tv wins; without one, a title field means movie and a name field
// means tv.
func ResolveMediaType(raw RawItem) (models.MediaType, bool) {
	if mt := models.MediaType(raw.MediaType); mt.Valid() {
		return mt, true
	}
	if raw.Title != nil {
		return models.MediaTypeMovie, true
	}
	if raw.Name != nil {
		return models.MediaTypeTV, true
	}
	return "", false
}

// Normalize maps raw results to CatalogItems. A valid stamp overrides whatever
// the response says, for endpoints that are already type-specific. Items whose
// media type or title cannot be resolved are dropped.
func (n *Normalizer) Normalize(raws []RawItem, stamp models.MediaType) []models.CatalogItem {
	items := make([]models.CatalogItem, 0, len(raws))
	for _, raw := range raws {
		item, ok := n.normalizeOne(raw, stamp)
		if !ok {
			slog.Debug("dropping unresolvable catalog item", "id", raw.ID, "media_type", raw.MediaType)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (n *Normalizer) normalizeOne(raw RawItem, stamp models.MediaType) (models.CatalogItem, bool) {
	mt := stamp
	if !mt.Valid() {
		var ok bool
		if mt, ok = ResolveMediaType(raw); !ok {
			return models.CatalogItem{}, false
		}
	}

	var title, date string
	if mt == models.MediaTypeMovie {
		title = firstNonEmpty(deref(raw.Title), deref(raw.Name))
		date = raw.ReleaseDate
	} else {
		title = firstNonEmpty(deref(raw.Name), deref(raw.Title))
		date = raw.FirstAirDate
	}
	if title == "" {
		return models.CatalogItem{}, false
	}

	return models.CatalogItem{
		ID:          raw.ID,
		Title:       title,
		Overview:    raw.Overview,
		PosterURL:   n.PosterURL(deref(raw.PosterPath)),
		ReleaseDate: date,
		Rating:      raw.VoteAverage,
		MediaType:   mt,
		GenreIDs:    raw.GenreIDs,
	}, true
}

// PosterURL returns nil when the catalog has no artwork.
func (n *Normalizer) PosterURL(posterPath string) *string {
	p := strings.TrimPrefix(strings.TrimSpace(posterPath), "/")
	if p == "" {
		return nil
	}
	u := n.posterBase + "/" + p
	return &u
}

// Interleave alternates movie, show, movie, show until the shorter list runs
// out, appends the rest of the longer list, and truncates to limit.
func Interleave(movies, shows []models.CatalogItem, limit int) []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(movies)+len(shows))
	if len(movies) == 0 || len(shows) == 0 {
		out = append(out, movies...)
		out = append(out, shows...)
		return truncate(out, limit)
	}

	pairs := min(len(movies), len(shows))
	for i := 0; i < pairs; i++ {
		out = append(out, movies[i], shows[i])
	}
	out = append(out, movies[pairs:]...)
	out = append(out, shows[pairs:]...)
	return truncate(out, limit)
}

func truncate(items []models.CatalogItem, limit int) []models.CatalogItem {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
