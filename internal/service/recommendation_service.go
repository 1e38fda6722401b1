package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/LikkleOra/studio/internal/metrics"
	"github.com/LikkleOra/studio/internal/models"
	"github.com/LikkleOra/studio/internal/validation"
)

const (
	// MaxRecommendations bounds every recommendation list.
	MaxRecommendations = 10

	anyVibe = "any"
	anyMood = "any"
)

const (
	noIndividualResults = "We couldn't find any movies or shows for that vibe. Try being a bit more general."
	noGroupResults      = "We couldn't find a good match for your group. Try adjusting your preferences."
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoResults    = errors.New("no results")
)

// NoResultsError carries the message shown when nothing could be recommended.
type NoResultsError struct {
	Message string
}

func (e *NoResultsError) Error() string { return "no results: " + e.Message }

func (e *NoResultsError) Unwrap() error { return ErrNoResults }

// Catalog is the part of the catalog client the service drives.
type Catalog interface {
	SearchContent(ctx context.Context, query string, genres []string, filter models.MediaFilter) ([]models.CatalogItem, error)
	GetRecommendations(ctx context.Context, mediaID int, mediaType models.MediaType) ([]models.CatalogItem, error)
}

// RecommendationService turns mood, genre and vibe choices into ranked picks.
type RecommendationService struct {
	catalog      Catalog
	ranker       Ranker
	validator    *validation.Validator
	placeholders []string
}

// NewRecommendationService creates a new RecommendationService. Placeholders
// are cycled through for solo picks that have no poster.
func NewRecommendationService(catalog Catalog, ranker Ranker, placeholders []string) *RecommendationService {
	return &RecommendationService{
		catalog:      catalog,
		ranker:       ranker,
		validator:    validation.New(),
		placeholders: placeholders,
	}
}

// Rules returns the ranker's scoring rules, or nil when the ranker does not
// publish any.
func (s *RecommendationService) Rules() []models.RankingRule {
	if r, ok := s.ranker.(interface{ Rules() []models.RankingRule }); ok {
		return r.Rules()
	}
	return nil
}

// Individual recommends titles for one person.
func (s *RecommendationService) Individual(ctx context.Context, req models.IndividualRequest) (*models.IndividualResponse, error) {
	req = normalizeIndividual(req)
	if err := s.validator.Validate(req); err != nil {
		metrics.Recommendations.WithLabelValues("individual", "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	query := ""
	if !strings.EqualFold(req.Vibe, anyVibe) {
		query = req.Vibe
	}

	candidates, err := s.catalog.SearchContent(ctx, query, req.Genres, models.MediaFilter(req.MediaType))
	if err != nil {
		metrics.Recommendations.WithLabelValues("individual", "error").Inc()
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	// A vibe naming a real title also pulls in what the catalog pairs with it.
	if seed, ok := findTitle(candidates, query); ok {
		similar, err := s.catalog.GetRecommendations(ctx, seed.ID, seed.MediaType)
		if err != nil {
			slog.Warn("similar titles unavailable", "title", seed.Title, "media_type", seed.MediaType, "error", err)
		} else {
			candidates = mergeUnique(candidates, similar)
		}
	}

	ranked, err := s.ranker.RankIndividual(ctx, req, candidates)
	if err != nil {
		metrics.Recommendations.WithLabelValues("individual", "error").Inc()
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) == 0 {
		metrics.Recommendations.WithLabelValues("individual", "no_results").Inc()
		return nil, &NoResultsError{Message: noIndividualResults}
	}
	if len(ranked) > MaxRecommendations {
		ranked = ranked[:MaxRecommendations]
	}

	for i := range ranked {
		if (ranked[i].PosterURL == nil || *ranked[i].PosterURL == "") && len(s.placeholders) > 0 {
			poster := s.placeholders[i%len(s.placeholders)]
			ranked[i].PosterURL = &poster
		}
	}

	slog.Info("individual recommendations ready", "mood", req.Mood, "media_type", req.MediaType, "count", len(ranked))
	metrics.Recommendations.WithLabelValues("individual", "ok").Inc()
	return &models.IndividualResponse{Movies: ranked}, nil
}

// Group recommends titles for everyone in the session at once. Titles
// without a poster are never recommended to a group.
func (s *RecommendationService) Group(ctx context.Context, req models.GroupRequest) (*models.GroupResponse, error) {
	req = normalizeGroup(req)
	if err := s.validator.Validate(req); err != nil {
		metrics.Recommendations.WithLabelValues("group", "invalid").Inc()
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	genres, query := combineTastes(req.Participants)
	candidates, err := s.catalog.SearchContent(ctx, query, genres, models.FilterAny)
	if err != nil {
		metrics.Recommendations.WithLabelValues("group", "error").Inc()
		return nil, fmt.Errorf("search catalog: %w", err)
	}

	withPosters := make([]models.CatalogItem, 0, len(candidates))
	for _, item := range candidates {
		if item.HasPoster() {
			withPosters = append(withPosters, item)
		}
	}

	ranked, err := s.ranker.RankGroup(ctx, req, withPosters)
	if err != nil {
		metrics.Recommendations.WithLabelValues("group", "error").Inc()
		return nil, fmt.Errorf("rank candidates: %w", err)
	}
	if len(ranked) == 0 {
		metrics.Recommendations.WithLabelValues("group", "no_results").Inc()
		return nil, &NoResultsError{Message: noGroupResults}
	}
	if len(ranked) > MaxRecommendations {
		ranked = ranked[:MaxRecommendations]
	}

	sessionID := uuid.NewString()
	slog.Info("group recommendations ready", "session_id", sessionID, "participants", len(req.Participants), "count", len(ranked))
	metrics.Recommendations.WithLabelValues("group", "ok").Inc()
	return &models.GroupResponse{SessionID: sessionID, Movies: ranked}, nil
}

func normalizeIndividual(req models.IndividualRequest) models.IndividualRequest {
	req.Mood = strings.TrimSpace(req.Mood)
	req.MediaType = strings.ToLower(strings.TrimSpace(req.MediaType))
	req.Vibe = strings.TrimSpace(req.Vibe)
	if req.Vibe == "" {
		req.Vibe = anyVibe
	}
	req.Genres = SplitGenres(req.Genres)
	return req
}

func normalizeGroup(req models.GroupRequest) models.GroupRequest {
	participants := make([]models.Participant, len(req.Participants))
	for i, p := range req.Participants {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.Mood = strings.TrimSpace(p.Mood)
		if p.Mood == "" {
			p.Mood = anyMood
		}
		p.Vibe = strings.TrimSpace(p.Vibe)
		p.Genres = SplitGenres(p.Genres)
		participants[i] = p
	}
	if req.Participants != nil {
		req.Participants = participants
	}
	return req
}

// SplitGenres accepts genres as list entries, comma-separated strings or both,
// and returns the trimmed non-empty names.
func SplitGenres(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// combineTastes merges every participant's genres, first seen first, and
// joins their vibes into one search phrase.
func combineTastes(participants []models.Participant) ([]string, string) {
	var genres, vibes []string
	seen := make(map[string]bool)
	for _, p := range participants {
		for _, g := range p.Genres {
			if !seen[g] {
				seen[g] = true
				genres = append(genres, g)
			}
		}
		if p.Vibe != "" && !strings.EqualFold(p.Vibe, anyVibe) {
			vibes = append(vibes, p.Vibe)
		}
	}
	return genres, strings.Join(vibes, " ")
}

// findTitle returns the first candidate whose title is the query, ignoring case.
func findTitle(items []models.CatalogItem, query string) (models.CatalogItem, bool) {
	if query == "" {
		return models.CatalogItem{}, false
	}
	for _, item := range items {
		if strings.EqualFold(item.Title, query) {
			return item, true
		}
	}
	return models.CatalogItem{}, false
}

// mergeUnique appends extra to base, skipping items base already holds.
func mergeUnique(base, extra []models.CatalogItem) []models.CatalogItem {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]models.CatalogItem, 0, len(base)+len(extra))
	for _, list := range [][]models.CatalogItem{base, extra} {
		for _, item := range list {
			if seen[item.Key()] {
				continue
			}
			seen[item.Key()] = true
			out = append(out, item)
		}
	}
	return out
}
