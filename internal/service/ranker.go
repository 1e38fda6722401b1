package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/LikkleOra/studio/internal/models"
	"github.com/LikkleOra/studio/internal/tmdb"
)

// Ranker orders catalog candidates and explains each pick.
type Ranker interface {
	RankIndividual(ctx context.Context, req models.IndividualRequest, candidates []models.CatalogItem) ([]models.Recommendation, error)
	RankGroup(ctx context.Context, req models.GroupRequest, candidates []models.CatalogItem) ([]models.GroupRecommendation, error)
}

// moodGenres maps each mood to the genre codes that suit it.
var moodGenres = map[string][]int{
	"chill":     {35, 16, 10751, 10749},
	"hype":      {28, 12, 878, 53},
	"cozy":      {10751, 16, 14, 10749, 35},
	"scared":    {27, 53, 9648},
	"emotional": {18, 10749, 10402, 36},
}

// vibeStopWords never count towards a vibe match.
var vibeStopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"like": true, "something": true, "movie": true, "show": true, "any": true,
}

// HeuristicRanker scores candidates with weighted rules. Rules that cannot
// apply to a request, such as genre_match when no genres were chosen, are left
// out of both the score and its weight total, so scores stay in [0, 1].
type HeuristicRanker struct {
	rules  []models.RankingRule
	genres tmdb.GenreMap
	now    func() time.Time
}

// NewHeuristicRanker creates a ranker using the default rules.
func NewHeuristicRanker(genres tmdb.GenreMap) *HeuristicRanker {
	rules := make([]models.RankingRule, len(models.DefaultRankingRules))
	copy(rules, models.DefaultRankingRules)
	return &HeuristicRanker{rules: rules, genres: genres, now: time.Now}
}

// Rules returns the active scoring rules.
func (h *HeuristicRanker) Rules() []models.RankingRule {
	out := make([]models.RankingRule, 0, len(h.rules))
	for _, r := range h.rules {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out
}

// taste is one set of preferences: a solo request or one group member.
type taste struct {
	mood   string
	genres []string
	vibe   string
}

type scored struct {
	item    models.CatalogItem
	score   float64
	reasons []string
}

// RankIndividual scores every candidate against the request, best first.
func (h *HeuristicRanker) RankIndividual(ctx context.Context, req models.IndividualRequest, candidates []models.CatalogItem) ([]models.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pref := taste{mood: req.Mood, genres: req.Genres, vibe: req.Vibe}
	results := make([]scored, len(candidates))
	for i, item := range candidates {
		score, reasons := h.score(item, pref)
		results[i] = scored{item: item, score: score, reasons: reasons}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	recs := make([]models.Recommendation, len(results))
	for i, r := range results {
		reason := "A popular pick right now"
		if len(r.reasons) > 0 {
			reason = capitalize(strings.Join(r.reasons, ", "))
		}
		recs[i] = models.Recommendation{
			ID:              r.item.ID,
			MediaType:       r.item.MediaType,
			Title:           r.item.Title,
			ConfidenceScore: r.score,
			Reason:          reason,
			PosterURL:       r.item.PosterURL,
		}
	}
	return recs, nil
}

// RankGroup scores every candidate per participant. The match percentage is
// the mean participant score as a whole percentage.
func (h *HeuristicRanker) RankGroup(ctx context.Context, req models.GroupRequest, candidates []models.CatalogItem) ([]models.GroupRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Participants) == 0 {
		return nil, nil
	}

	type groupScore struct {
		item models.CatalogItem
		mean float64
		why  string
	}

	results := make([]groupScore, 0, len(candidates))
	for _, item := range candidates {
		var total float64
		var fits []string
		for i, p := range req.Participants {
			score, reasons := h.score(item, taste{mood: p.Mood, genres: p.Genres, vibe: p.Vibe})
			total += score
			if score >= 0.5 && len(reasons) > 0 {
				fits = append(fits, fmt.Sprintf("participant %d (%s)", i+1, reasons[0]))
			}
		}
		mean := total / float64(len(req.Participants))

		why := fmt.Sprintf("A solid compromise for all %d of you", len(req.Participants))
		if len(fits) > 0 {
			why = fmt.Sprintf("Works for %d of %d: %s", len(fits), len(req.Participants), strings.Join(fits, "; "))
		}
		results = append(results, groupScore{item: item, mean: mean, why: why})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].mean > results[j].mean
	})

	recs := make([]models.GroupRecommendation, len(results))
	for i, r := range results {
		poster := ""
		if r.item.PosterURL != nil {
			poster = *r.item.PosterURL
		}
		recs[i] = models.GroupRecommendation{
			MovieID:              r.item.ID,
			MediaType:            r.item.MediaType,
			Title:                r.item.Title,
			PosterURL:            poster,
			GroupMatchPercentage: int(math.Round(r.mean * 100)),
			WhyThisWorks:         r.why,
		}
	}
	return recs, nil
}

// score applies each active rule to item. Reasons are listed in rule order.
func (h *HeuristicRanker) score(item models.CatalogItem, pref taste) (float64, []string) {
	var total, weights float64
	var reasons []string

	for _, rule := range h.rules {
		if !rule.IsActive || rule.Weight <= 0 {
			continue
		}

		var s float64
		var reason string
		switch rule.RuleType {
		case models.RuleRating:
			s = clamp01(item.Rating / 10)
			if s >= 0.75 {
				reason = fmt.Sprintf("highly rated (%.1f/10)", item.Rating)
			}
		case models.RuleGenreMatch:
			wanted := h.genres.Resolve(pref.genres)
			if len(wanted) == 0 {
				continue
			}
			var matched []string
			s, matched = h.genreMatch(item, pref.genres, wanted)
			if len(matched) > 0 {
				reason = "matches " + strings.Join(matched, " and ")
			}
		case models.RuleMoodMatch:
			codes, ok := moodGenres[strings.ToLower(strings.TrimSpace(pref.mood))]
			if !ok {
				continue
			}
			if hasAnyGenre(item, codes) {
				s = 1
				reason = "fits a " + strings.ToLower(pref.mood) + " mood"
			}
		case models.RuleVibeMatch:
			vibe := strings.TrimSpace(pref.vibe)
			if vibe == "" || strings.EqualFold(vibe, anyVibe) {
				continue
			}
			s = vibeMatch(item, vibe)
			if s >= 0.5 {
				reason = fmt.Sprintf("has the %q vibe", vibe)
			}
		case models.RuleRecency:
			s = recencyScore(item.ReleaseDate, h.now())
			if s > 0.7 {
				reason = "recently released"
			}
		default:
			continue
		}

		total += s * rule.Weight
		weights += rule.Weight
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if weights == 0 {
		return 0, reasons
	}
	return math.Round(total/weights*10000) / 10000, reasons
}

// genreMatch is the share of the requested genres the item carries.
func (h *HeuristicRanker) genreMatch(item models.CatalogItem, names []string, wanted []int) (float64, []string) {
	have := make(map[int]bool, len(item.GenreIDs))
	for _, id := range item.GenreIDs {
		have[id] = true
	}

	var matched []string
	hits := make(map[int]bool)
	for _, name := range names {
		id, ok := h.genres[name]
		if !ok || !have[tmdb.CodeFor(item.MediaType, id)] || hits[id] {
			continue
		}
		hits[id] = true
		matched = append(matched, name)
	}
	return float64(len(hits)) / float64(len(wanted)), matched
}

// hasAnyGenre reports whether item carries any of the movie genre codes,
// translated to the item's own catalog.
func hasAnyGenre(item models.CatalogItem, codes []int) bool {
	for _, id := range item.GenreIDs {
		for _, code := range codes {
			if id == tmdb.CodeFor(item.MediaType, code) {
				return true
			}
		}
	}
	return false
}

// vibeMatch is 1 for an exact title match, otherwise the share of vibe words
// found in the title or overview.
func vibeMatch(item models.CatalogItem, vibe string) float64 {
	if strings.EqualFold(item.Title, vibe) {
		return 1
	}
	words := vibeWords(vibe)
	if len(words) == 0 {
		return 0
	}

	text := make(map[string]bool)
	for _, w := range vibeWords(item.Title + " " + item.Overview) {
		text[w] = true
	}
	hits := 0
	for _, w := range words {
		if text[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(words))
}

func vibeWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var out []string
	for _, f := range fields {
		if len(f) < 3 || vibeStopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// recencyScore decays linearly from 1 at release to 0 after five years.
// Unknown dates score 0.
func recencyScore(releaseDate string, now time.Time) float64 {
	t, err := time.Parse("2006-01-02", releaseDate)
	if err != nil {
		return 0
	}
	days := now.Sub(t).Hours() / 24
	if days < 0 {
		days = 0
	}
	return clamp01(1 - days/1825)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
