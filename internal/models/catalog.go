package models

import "fmt"

// MediaType identifies which catalog a title belongs to.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether m is one of the catalog media types.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// MediaFilter selects the catalogs a search runs against.
type MediaFilter string

const (
	FilterMovie MediaFilter = "movie"
	FilterTV    MediaFilter = "tv"
	FilterAny   MediaFilter = "any"
)

// ParseMediaFilter maps user input to a MediaFilter. Empty input means any.
func ParseMediaFilter(s string) (MediaFilter, error) {
	switch MediaFilter(s) {
	case "":
		return FilterAny, nil
	case FilterMovie, FilterTV, FilterAny:
		return MediaFilter(s), nil
	}
	return "", fmt.Errorf("unknown media type %q", s)
}

// MediaTypes expands the filter into the catalogs to query, movie first.
func (f MediaFilter) MediaTypes() []MediaType {
	switch f {
	case FilterMovie:
		return []MediaType{MediaTypeMovie}
	case FilterTV:
		return []MediaType{MediaTypeTV}
	default:
		return []MediaType{MediaTypeMovie, MediaTypeTV}
	}
}

// CatalogItem is a movie or show normalized from a catalog response.
// IDs are only unique within a media type.
type CatalogItem struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Overview    string    `json:"overview"`
	PosterURL   *string   `json:"poster_url"`
	ReleaseDate string    `json:"release_date"`
	Rating      float64   `json:"rating"`
	MediaType   MediaType `json:"media_type"`
	GenreIDs    []int     `json:"genre_ids,omitempty"`
}

// Key identifies an item across both catalogs.
func (c CatalogItem) Key() string {
	return fmt.Sprintf("%s:%d", c.MediaType, c.ID)
}

// HasPoster reports whether the catalog supplied artwork for the item.
func (c CatalogItem) HasPoster() bool {
	return c.PosterURL != nil && *c.PosterURL != ""
}

// SearchResponse wraps a catalog search result for the API.
type SearchResponse struct {
	Query     string        `json:"query,omitempty"`
	Genres    []string      `json:"genres"`
	MediaType MediaFilter   `json:"media_type"`
	Results   []CatalogItem `json:"results"`
}

// GenreListResponse lists the genre names the catalog client understands.
type GenreListResponse struct {
	Genres []string `json:"genres"`
}
