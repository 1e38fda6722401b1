package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/LikkleOra/studio/internal/tmdb"
)

// ErrMissingAPIKey is returned when TMDB_API_KEY is not set. It is the same
// sentinel tmdb.NewClient returns, so callers match either with errors.Is.
var ErrMissingAPIKey = tmdb.ErrMissingAPIKey

// Config holds all configuration for the vibe service.
type Config struct {
	Redis              RedisConfig
	TMDB               TMDBConfig
	RateLimit          RateLimitConfig
	Port               string
	APIToken           string
	LogLevel           slog.Level
	PlaceholderPosters []string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	KeywordCacheTTL time.Duration
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	PosterSize   string
	Timeout      time.Duration
	MaxAttempts  int
	RateLimit    float64
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	Max           int
	WindowSeconds int
}

// DefaultPlaceholderPosters are shown for titles without catalog artwork.
var DefaultPlaceholderPosters = []string{
	"https://placehold.co/500x750/1f2937/e5e7eb?text=No+Poster",
	"https://placehold.co/500x750/312e81/e0e7ff?text=No+Poster",
	"https://placehold.co/500x750/7f1d1d/fee2e2?text=No+Poster",
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	maxAttempts, _ := strconv.Atoi(getEnv("TMDB_MAX_ATTEMPTS", "2"))
	tmdbRate, _ := strconv.ParseFloat(getEnv("TMDB_RATE_LIMIT", "40"), 64)
	rateLimitMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "100"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	cfg := &Config{
		Redis: RedisConfig{
			Addr:            getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			DB:              redisDB,
			KeywordCacheTTL: getDuration("KEYWORD_CACHE_TTL", time.Hour),
		},
		TMDB: TMDBConfig{
			APIKey:       strings.TrimSpace(os.Getenv("TMDB_API_KEY")),
			BaseURL:      getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ImageBaseURL: getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p"),
			PosterSize:   getEnv("TMDB_POSTER_SIZE", "w500"),
			Timeout:      getDuration("TMDB_TIMEOUT", 10*time.Second),
			MaxAttempts:  maxAttempts,
			RateLimit:    tmdbRate,
		},
		RateLimit: RateLimitConfig{
			Max:           rateLimitMax,
			WindowSeconds: rateLimitWindow,
		},
		Port:               getEnv("SERVER_PORT", "8080"),
		APIToken:           os.Getenv("API_TOKEN"),
		LogLevel:           parseLevel(getEnv("LOG_LEVEL", "info")),
		PlaceholderPosters: getList("PLACEHOLDER_POSTERS", DefaultPlaceholderPosters),
	}

	if cfg.TMDB.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.TMDB.MaxAttempts < 1 {
		cfg.TMDB.MaxAttempts = 1
	}
	if cfg.TMDB.RateLimit <= 0 {
		cfg.TMDB.RateLimit = 40
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getDuration accepts Go durations ("15s") or plain seconds ("15").
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
