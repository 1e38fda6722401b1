package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/LikkleOra/studio/internal/models"
	"github.com/LikkleOra/studio/internal/service"
)

const (
	invalidIndividualInput = "Invalid input. Please check your selections."
	invalidGroupInput      = "Invalid participant data."
)

// RecommendationHandler handles HTTP requests for recommendations.
type RecommendationHandler struct {
	svc *service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(svc *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{svc: svc}
}

// Individual recommends titles for one person.
// @Summary Solo recommendations
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body models.IndividualRequest true "Mood, media type, vibe and genres"
// @Success 200 {object} models.IndividualResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /recommendations/individual [post]
func (h *RecommendationHandler) Individual(c fiber.Ctx) error {
	var req models.IndividualRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: invalidIndividualInput})
	}

	resp, err := h.svc.Individual(c.Context(), req)
	if err != nil {
		var nre *service.NoResultsError
		if errors.As(err, &nre) {
			return c.JSON(models.IndividualResponse{Movies: []models.Recommendation{}, Error: nre.Message})
		}
		return writeError(c, err, invalidIndividualInput)
	}

	return c.JSON(resp)
}

// Group recommends titles for a whole group.
// @Summary Group recommendations
// @Tags recommendations
// @Accept json
// @Produce json
// @Param request body models.GroupRequest true "Participants"
// @Success 200 {object} models.GroupResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /recommendations/group [post]
func (h *RecommendationHandler) Group(c fiber.Ctx) error {
	var req models.GroupRequest
	if err := c.Bind().JSON(&req); err != nil {
		slog.Debug("malformed group request", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: invalidGroupInput})
	}

	resp, err := h.svc.Group(c.Context(), req)
	if err != nil {
		var nre *service.NoResultsError
		if errors.As(err, &nre) {
			return c.JSON(models.GroupResponse{Movies: []models.GroupRecommendation{}, Error: nre.Message})
		}
		return writeError(c, err, invalidGroupInput)
	}

	return c.JSON(resp)
}

// GetRules lists the scoring rules behind the ranking.
// @Summary Ranking rules
// @Tags recommendations
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /rules [get]
func (h *RecommendationHandler) GetRules(c fiber.Ctx) error {
	rules := h.svc.Rules()
	if rules == nil {
		rules = []models.RankingRule{}
	}
	return c.JSON(fiber.Map{
		"rules": rules,
	})
}
