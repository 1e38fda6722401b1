package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LikkleOra/studio/internal/config"
	"github.com/LikkleOra/studio/internal/database"
	"github.com/LikkleOra/studio/internal/handler"
	"github.com/LikkleOra/studio/internal/middleware"
	"github.com/LikkleOra/studio/internal/service"
	"github.com/LikkleOra/studio/internal/tmdb"
)

func main() {
	slog.SetDefault(newLogger(os.Stdout, slog.LevelInfo))

	if err := run(); err != nil {
		slog.Error("vibe service stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// run wires the service and blocks until the server stops. Returning instead
// of exiting lets deferred cleanup run.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(newLogger(os.Stdout, cfg.LogLevel))

	// Connect to Redis (non-fatal if unavailable)
	var (
		tmdbOpts    []tmdb.Option
		rateCounter middleware.Counter
	)
	rdb, err := database.NewRedis(context.Background(), cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable, running without keyword cache or rate limiting", "error", err)
	} else {
		defer rdb.Close()
		tmdbOpts = append(tmdbOpts, tmdb.WithKeywordCache(database.NewKeywordCache(rdb), cfg.Redis.KeywordCacheTTL))
		rateCounter = middleware.NewRedisCounter(rdb)
	}

	// Initialize TMDB client
	tmdbClient, err := tmdb.NewClient(tmdb.Config{
		APIKey:       cfg.TMDB.APIKey,
		BaseURL:      cfg.TMDB.BaseURL,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
		PosterSize:   cfg.TMDB.PosterSize,
		Timeout:      cfg.TMDB.Timeout,
		MaxAttempts:  cfg.TMDB.MaxAttempts,
		RateLimit:    cfg.TMDB.RateLimit,
	}, tmdbOpts...)
	if err != nil {
		return fmt.Errorf("failed to create TMDB client: %w", err)
	}

	// Initialize layers
	svc := service.NewRecommendationService(tmdbClient, service.NewHeuristicRanker(tmdb.DefaultGenres), cfg.PlaceholderPosters)
	catalogHandler := handler.NewCatalogHandler(tmdbClient)
	recHandler := handler.NewRecommendationHandler(svc)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Vibe Service",
		ServerHeader: "Vibe-Service",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(middleware.Metrics())
	app.Use(middleware.NewRateLimiter(rateCounter, cfg.RateLimit.Max, cfg.RateLimit.WindowSeconds).Handler())
	app.Use(middleware.Auth(cfg.APIToken))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger docs
	swaggerYAML, err := os.ReadFile("docs/swagger.yaml")
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, "Vibe Service", swaggerYAML)
	}

	// API routes
	handler.RegisterRoutes(app, catalogHandler, recHandler)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		slog.Info("shutting down vibe service...")
		_ = app.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting vibe service", "addr", addr, "genres", len(tmdbClient.Genres()))
	if err := app.Listen(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
