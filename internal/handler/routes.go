package handler

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts the API on r.
func RegisterRoutes(r fiber.Router, catalog *CatalogHandler, recs *RecommendationHandler) {
	r.Get("/health", catalog.Health)

	api := r.Group("/api/v1")
	api.Get("/genres", catalog.ListGenres)
	api.Get("/rules", recs.GetRules)
	api.Get("/content/search", catalog.Search)
	api.Get("/content/:media_type/:id/recommendations", catalog.Similar)
	api.Post("/recommendations/individual", recs.Individual)
	api.Post("/recommendations/group", recs.Group)
}
