package models

// RankingRule defines a weighted scoring rule used by the heuristic ranker.
type RankingRule struct {
	Name     string  `json:"name"`
	RuleType string  `json:"rule_type"`
	Weight   float64 `json:"weight"`
	IsActive bool    `json:"is_active"`
}

// Rule types understood by the heuristic ranker.
const (
	RuleRating     = "rating"
	RuleGenreMatch = "genre_match"
	RuleMoodMatch  = "mood_match"
	RuleVibeMatch  = "vibe_match"
	RuleRecency    = "recency"
)

// DefaultRankingRules are the weights applied when no override is configured.
var DefaultRankingRules = []RankingRule{
	{Name: "Audience rating", RuleType: RuleRating, Weight: 0.30, IsActive: true},
	{Name: "Genre match", RuleType: RuleGenreMatch, Weight: 0.25, IsActive: true},
	{Name: "Mood match", RuleType: RuleMoodMatch, Weight: 0.20, IsActive: true},
	{Name: "Vibe match", RuleType: RuleVibeMatch, Weight: 0.15, IsActive: true},
	{Name: "Recency", RuleType: RuleRecency, Weight: 0.10, IsActive: true},
}

// IndividualRequest is the solo recommendation form.
type IndividualRequest struct {
	Mood      string   `json:"mood" validate:"required,max=50"`
	MediaType string   `json:"media_type" validate:"required,oneof=movie tv any"`
	Vibe      string   `json:"vibe" validate:"max=200"`
	Genres    []string `json:"genres" validate:"max=20,dive,max=50"`
}

// Participant is one member of a group session.
type Participant struct {
	ID     string   `json:"id"`
	Mood   string   `json:"mood" validate:"max=50"`
	Genres []string `json:"genres" validate:"max=20,dive,max=50"`
	Vibe   string   `json:"vibe" validate:"max=200"`
}

// GroupRequest is the group recommendation form.
type GroupRequest struct {
	Participants []Participant `json:"participants" validate:"required,min=1,max=10,dive"`
}

// Recommendation is a ranked solo recommendation.
type Recommendation struct {
	ID              int       `json:"id"`
	MediaType       MediaType `json:"media_type"`
	Title           string    `json:"title"`
	ConfidenceScore float64   `json:"confidence_score"`
	Reason          string    `json:"reason"`
	PosterURL       *string   `json:"poster_url"`
}

// GroupRecommendation is a ranked recommendation for a whole group.
type GroupRecommendation struct {
	MovieID              int       `json:"movie_id"`
	MediaType            MediaType `json:"media_type"`
	Title                string    `json:"title"`
	PosterURL            string    `json:"poster_url"`
	GroupMatchPercentage int       `json:"group_match_percentage"`
	WhyThisWorks         string    `json:"why_this_works"`
}

// IndividualResponse carries solo results or a user-facing message.
type IndividualResponse struct {
	Movies []Recommendation `json:"movies"`
	Error  string           `json:"error,omitempty"`
}

// GroupResponse carries group results or a user-facing message.
type GroupResponse struct {
	SessionID string                `json:"session_id"`
	Movies    []GroupRecommendation `json:"movies"`
	Error     string                `json:"error,omitempty"`
}
