package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/LikkleOra/studio/internal/metrics"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org/3"
	defaultImageBaseURL = "https://image.tmdb.org/t/p"
	defaultPosterSize   = "w500"
	defaultTimeout      = 10 * time.Second
	defaultRateLimit    = 40
	rateBurst           = 10
	breakerName         = "tmdb"
)

// Config holds the settings a Client needs. It is read once at construction.
type Config struct {
	APIKey       string
	BaseURL      string
	ImageBaseURL string
	PosterSize   string
	Timeout      time.Duration // per upstream call
	MaxAttempts  int           // 1 disables retries
	RateLimit    float64       // requests per second
}

// KeywordCache stores free-text to keyword-id resolutions.
type KeywordCache interface {
	GetKeywords(ctx context.Context, query string) ([]int, bool)
	SetKeywords(ctx context.Context, query string, ids []int, ttl time.Duration)
}

// Client is the TMDB API client.
type Client struct {
	apiKey      string
	baseURL     string
	http        *http.Client
	timeout     time.Duration
	maxAttempts uint
	retryDelay  time.Duration
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]byte]
	genres      GenreMap
	normalizer  *Normalizer
	keywords    KeywordCache
	keywordTTL  time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithGenreMap replaces DefaultGenres.
func WithGenreMap(g GenreMap) Option {
	return func(c *Client) {
		c.genres = g.clone()
	}
}

// WithKeywordCache enables caching of keyword lookups.
func WithKeywordCache(cache KeywordCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.keywords = cache
		c.keywordTTL = ttl
	}
}

// WithRetryDelay sets the initial backoff between attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a new TMDB API client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	imageBase := cfg.ImageBaseURL
	if imageBase == "" {
		imageBase = defaultImageBaseURL
	}
	posterSize := cfg.PosterSize
	if posterSize == "" {
		posterSize = defaultPosterSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = defaultRateLimit
	}

	c := &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		http:        &http.Client{Timeout: timeout + time.Second},
		timeout:     timeout,
		maxAttempts: uint(attempts),
		retryDelay:  300 * time.Millisecond,
		limiter:     rate.NewLimiter(rate.Limit(rps), rateBurst),
		genres:      DefaultGenres.clone(),
		normalizer:  NewNormalizer(imageBase, posterSize),
	}
	c.breaker = newBreaker()

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Genres returns the genre names the client can translate.
func (c *Client) Genres() []string {
	return c.genres.Names()
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors and caller cancellation say nothing about catalog health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var ue *UpstreamError
			if errors.As(err, &ue) {
				return !ue.Retryable()
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("tmdb circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

// doGet calls endpoint with the shared query parameters and decodes the JSON
// body into v. 429 and 5xx responses and transport errors are retried with
// backoff; any other non-2xx status fails immediately.
func (c *Client) doGet(ctx context.Context, op, endpoint string, params url.Values, v any) error {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("language", "en-US")
	for key, vals := range params {
		for _, val := range vals {
			if val != "" {
				q.Add(key, val)
			}
		}
	}
	target := c.baseURL + endpoint + "?" + q.Encode()

	var body []byte
	attempt := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", errRateWait, err)
		}
		b, err := c.breaker.Execute(func() ([]byte, error) {
			return c.fetch(ctx, op, endpoint, target)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s", ErrCircuitOpen, op)
		}
		if err != nil {
			return err
		}
		body = b
		return nil
	}

	err := retry.Do(attempt,
		retry.Context(ctx),
		retry.Attempts(c.maxAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			// retry-go also calls this after the final attempt.
			if n+1 < c.maxAttempts {
				slog.Warn("retrying tmdb request", "op", op, "attempt", n+1, "error", err)
			}
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, op, endpoint, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching TMDB", "op", op, "endpoint", endpoint)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(op, 0, time.Since(start))
		return nil, fmt.Errorf("tmdb %s: HTTP request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	metrics.ObserveUpstream(op, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("tmdb %s: read body: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ue := newUpstreamError(op, endpoint, resp.StatusCode, body)
		slog.Error("TMDB API error", "op", op, "status", resp.StatusCode, "message", ue.Message)
		return nil, ue
	}
	return body, nil
}

// errRateWait means the outbound limiter gave up before the context did.
var errRateWait = errors.New("tmdb: rate limiter wait")

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, errRateWait) || errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable()
	}
	return true
}
