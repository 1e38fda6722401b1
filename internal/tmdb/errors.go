package tmdb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// Sentinel errors for catalog operations.
var (
	ErrMissingAPIKey    = errors.New("tmdb: api key not configured")
	ErrUpstream         = errors.New("tmdb: upstream request failed")
	ErrCircuitOpen      = errors.New("tmdb: circuit breaker open")
	ErrInvalidMediaType = errors.New("tmdb: invalid media type")
	ErrInvalidID        = errors.New("tmdb: invalid media id")
)

// UpstreamError is a non-success response from the catalog.
type UpstreamError struct {
	Op         string // "search_movie", "discover_tv", "keywords", ...
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tmdb %s [%s]: status %d: %s", e.Op, e.Endpoint, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}

// Retryable reports whether the failure is worth another attempt.
func (e *UpstreamError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// newUpstreamError extracts status_message from a TMDB error body when present.
func newUpstreamError(op, endpoint string, status int, body []byte) *UpstreamError {
	msg := http.StatusText(status)

	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.StatusMessage != "" {
		msg = payload.StatusMessage
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		msg = text
	}

	return &UpstreamError{
		Op:         op,
		Endpoint:   endpoint,
		StatusCode: status,
		Message:    msg,
	}
}
