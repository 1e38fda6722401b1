package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/LikkleOra/studio/internal/models"
	"github.com/LikkleOra/studio/internal/service"
)

// Catalog is the catalog client surface the API exposes.
type Catalog interface {
	SearchContent(ctx context.Context, query string, genres []string, filter models.MediaFilter) ([]models.CatalogItem, error)
	GetRecommendations(ctx context.Context, mediaID int, mediaType models.MediaType) ([]models.CatalogItem, error)
	Genres() []string
}

// CatalogHandler handles HTTP requests for catalog lookups.
type CatalogHandler struct {
	catalog Catalog
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Health returns service health status.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *CatalogHandler) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "vibe-service",
	})
}

// ListGenres returns the genre names searches understand.
// @Summary List genres
// @Tags catalog
// @Produce json
// @Success 200 {object} models.GenreListResponse
// @Router /genres [get]
func (h *CatalogHandler) ListGenres(c fiber.Ctx) error {
	return c.JSON(models.GenreListResponse{Genres: h.catalog.Genres()})
}

// Search finds movies and shows by free text and genres.
// @Summary Search the catalog
// @Tags catalog
// @Produce json
// @Param query query string false "Free text"
// @Param genres query string false "Comma-separated genre names"
// @Param media_type query string false "Catalog to search" Enums(movie,tv,any) default(any)
// @Success 200 {object} models.SearchResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /content/search [get]
func (h *CatalogHandler) Search(c fiber.Ctx) error {
	query := c.Query("query")
	genres := service.SplitGenres([]string{c.Query("genres")})
	filter := models.MediaFilter(c.Query("media_type", string(models.FilterAny)))

	items, err := h.catalog.SearchContent(c.Context(), query, genres, filter)
	if err != nil {
		return writeError(c, err, "invalid media_type, expected movie, tv or any")
	}
	if items == nil {
		items = []models.CatalogItem{}
	}
	if genres == nil {
		genres = []string{}
	}

	return c.JSON(models.SearchResponse{
		Query:     query,
		Genres:    genres,
		MediaType: filter,
		Results:   items,
	})
}

// Similar returns titles the catalog pairs with one movie or show.
// @Summary Similar titles
// @Tags catalog
// @Produce json
// @Param media_type path string true "movie or tv"
// @Param id path int true "Catalog ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /content/{media_type}/{id}/recommendations [get]
func (h *CatalogHandler) Similar(c fiber.Ctx) error {
	mediaType := models.MediaType(c.Params("media_type"))
	id := fiber.Params[int](c, "id")

	items, err := h.catalog.GetRecommendations(c.Context(), id, mediaType)
	if err != nil {
		return writeError(c, err, "invalid media type or ID")
	}
	if items == nil {
		items = []models.CatalogItem{}
	}

	return c.JSON(fiber.Map{
		"media_type": mediaType,
		"id":         id,
		"results":    items,
	})
}
