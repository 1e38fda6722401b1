package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LikkleOra/studio/internal/models"
	"github.com/LikkleOra/studio/internal/service"
	"github.com/LikkleOra/studio/internal/tmdb"
)

type fakeCatalog struct {
	items []models.CatalogItem
	err   error

	lastQuery  string
	lastGenres []string
	lastFilter models.MediaFilter
	lastID     int
}

func (f *fakeCatalog) SearchContent(_ context.Context, query string, genres []string, filter models.MediaFilter) ([]models.CatalogItem, error) {
	f.lastQuery, f.lastGenres, f.lastFilter = query, genres, filter
	return f.items, f.err
}

func (f *fakeCatalog) GetRecommendations(_ context.Context, id int, mt models.MediaType) ([]models.CatalogItem, error) {
	f.lastID = id
	if !mt.Valid() {
		return nil, tmdb.ErrInvalidMediaType
	}
	if id <= 0 {
		return nil, tmdb.ErrInvalidID
	}
	return f.items, f.err
}

func (f *fakeCatalog) Genres() []string {
	return tmdb.DefaultGenres.Names()
}

func poster(s string) *string { return &s }

func newTestApp(catalog *fakeCatalog) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	svc := service.NewRecommendationService(catalog, service.NewHeuristicRanker(tmdb.DefaultGenres), []string{"placeholder"})
	RegisterRoutes(app, NewCatalogHandler(catalog), NewRecommendationHandler(svc))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	var body map[string]string
	status := do(t, newTestApp(&fakeCatalog{}), http.MethodGet, "/health", "", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestListGenres(t *testing.T) {
	var body models.GenreListResponse
	status := do(t, newTestApp(&fakeCatalog{}), http.MethodGet, "/api/v1/genres", "", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body.Genres, "Sci-Fi")
	assert.IsIncreasing(t, body.Genres)
}

func TestGetRules(t *testing.T) {
	var body struct {
		Rules []models.RankingRule `json:"rules"`
	}
	status := do(t, newTestApp(&fakeCatalog{}), http.MethodGet, "/api/v1/rules", "", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body.Rules, len(models.DefaultRankingRules))
}

func TestSearch(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Alien", MediaType: models.MediaTypeMovie},
		{ID: 2, Title: "Dark", MediaType: models.MediaTypeTV, PosterURL: poster("https://img/dark.jpg")},
	}}

	var body models.SearchResponse
	status := do(t, newTestApp(catalog), http.MethodGet, "/api/v1/content/search?query=space&genres=Sci-Fi,%20Horror", "", &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "space", catalog.lastQuery)
	assert.Equal(t, []string{"Sci-Fi", "Horror"}, catalog.lastGenres)
	assert.Equal(t, models.FilterAny, catalog.lastFilter)
	require.Len(t, body.Results, 2)
	assert.Nil(t, body.Results[0].PosterURL)
	assert.Equal(t, "https://img/dark.jpg", *body.Results[1].PosterURL)
}

func TestSearch_NullPosterIsSerializedAsNull(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{{ID: 1, Title: "Alien", MediaType: models.MediaTypeMovie}}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/content/search", nil)
	resp, err := newTestApp(catalog).Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"poster_url":null`)
	assert.Contains(t, string(data), `"genres":[]`)
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		upstream int
	}{
		{name: "invalid media type", err: tmdb.ErrInvalidMediaType, status: http.StatusBadRequest},
		{name: "unauthorized upstream", err: &tmdb.UpstreamError{Op: "search_movie", StatusCode: 401, Message: "Invalid API key"}, status: http.StatusBadGateway, upstream: 401},
		{name: "breaker open", err: tmdb.ErrCircuitOpen, status: http.StatusServiceUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			status := do(t, newTestApp(&fakeCatalog{err: tt.err}), http.MethodGet, "/api/v1/content/search?media_type=movie", "", &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.upstream, body.UpstreamStatus)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestSimilar(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{{ID: 9, Title: "Shrek 2", MediaType: models.MediaTypeMovie}}}

	var body struct {
		Results []models.CatalogItem `json:"results"`
	}
	status := do(t, newTestApp(catalog), http.MethodGet, "/api/v1/content/movie/808/recommendations", "", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 808, catalog.lastID)
	assert.Len(t, body.Results, 1)

	assert.Equal(t, http.StatusBadRequest, do(t, newTestApp(catalog), http.MethodGet, "/api/v1/content/book/808/recommendations", "", nil))
	assert.Equal(t, http.StatusBadRequest, do(t, newTestApp(catalog), http.MethodGet, "/api/v1/content/tv/abc/recommendations", "", nil))
}

func TestIndividual(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Alien", MediaType: models.MediaTypeMovie, Rating: 8.5},
	}}

	var body models.IndividualResponse
	status := do(t, newTestApp(catalog), http.MethodPost, "/api/v1/recommendations/individual",
		`{"mood":"Scared","media_type":"movie","genres":["Horror"]}`, &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, "Alien", body.Movies[0].Title)
	assert.Equal(t, "placeholder", *body.Movies[0].PosterURL)
	assert.Empty(t, body.Error)
}

func TestIndividual_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"mood":`},
		{name: "missing mood", body: `{"media_type":"movie"}`},
		{name: "bad media type", body: `{"mood":"Chill","media_type":"book"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			status := do(t, newTestApp(&fakeCatalog{}), http.MethodPost, "/api/v1/recommendations/individual", tt.body, &body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "Invalid input. Please check your selections.", body.Error)
		})
	}
}

func TestIndividual_NoResultsIsNotAnError(t *testing.T) {
	var body models.IndividualResponse
	status := do(t, newTestApp(&fakeCatalog{}), http.MethodPost, "/api/v1/recommendations/individual",
		`{"mood":"Chill","media_type":"any","vibe":"nothing like this exists"}`, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body.Movies)
	assert.Equal(t, "We couldn't find any movies or shows for that vibe. Try being a bit more general.", body.Error)
}

func TestGroup(t *testing.T) {
	catalog := &fakeCatalog{items: []models.CatalogItem{
		{ID: 1, Title: "Laugh Track", MediaType: models.MediaTypeTV, Rating: 9, GenreIDs: []int{35}, PosterURL: poster("https://img/1.jpg")},
		{ID: 2, Title: "Bare", MediaType: models.MediaTypeMovie, Rating: 9},
	}}

	var body models.GroupResponse
	status := do(t, newTestApp(catalog), http.MethodPost, "/api/v1/recommendations/group",
		`{"participants":[{"id":"a","mood":"Chill","genres":["Comedy"]},{"mood":"Hype","genres":["Action"],"vibe":"heist"}]}`, &body)
	require.Equal(t, http.StatusOK, status)

	assert.NotEmpty(t, body.SessionID)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, 1, body.Movies[0].MovieID)
	assert.Equal(t, models.FilterAny, catalog.lastFilter)
	assert.Equal(t, "heist", catalog.lastQuery)
	assert.Equal(t, []string{"Comedy", "Action"}, catalog.lastGenres)
}

func TestGroup_Invalid(t *testing.T) {
	var body ErrorResponse
	status := do(t, newTestApp(&fakeCatalog{}), http.MethodPost, "/api/v1/recommendations/group", `{"participants":[]}`, &body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid participant data.", body.Error)
	assert.Contains(t, body.Fields, "participants")
}

func TestGroup_UpstreamFailure(t *testing.T) {
	catalog := &fakeCatalog{err: &tmdb.UpstreamError{Op: "discover_tv", StatusCode: 503, Message: "Service Unavailable"}}

	var body ErrorResponse
	status := do(t, newTestApp(catalog), http.MethodPost, "/api/v1/recommendations/group", `{"participants":[{"mood":"Chill"}]}`, &body)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, 503, body.UpstreamStatus)
}

func TestRegisterSwagger(t *testing.T) {
	app := fiber.New()
	RegisterSwagger(app, "Vibe Service", []byte("openapi: 3.0.0\n"))

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.yaml", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "openapi: 3.0.0\n", string(data))

	req = httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(data), "<title>Vibe Service - Swagger UI</title>")
	assert.Contains(t, string(data), `url: "/swagger/doc.yaml"`)
}
