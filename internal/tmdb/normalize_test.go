package tmdb

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LikkleOra/studio/internal/models"
)

func decodeRaw(t *testing.T, body string) []RawItem {
	t.Helper()
	var raws []RawItem
	require.NoError(t, json.Unmarshal([]byte(body), &raws))
	return raws
}

func TestResolveMediaType(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   models.MediaType
		wantOK bool
	}{
		{name: "explicit movie", body: `{"media_type":"movie","name":"x"}`, want: models.MediaTypeMovie, wantOK: true},
		{name: "explicit tv beats title", body: `{"media_type":"tv","title":"x"}`, want: models.MediaTypeTV, wantOK: true},
		{name: "title fallback", body: `{"title":"Alien"}`, want: models.MediaTypeMovie, wantOK: true},
		{name: "name fallback", body: `{"name":"Dark"}`, want: models.MediaTypeTV, wantOK: true},
		{name: "unknown discriminator falls back to shape", body: `{"media_type":"person","name":"Ann"}`, want: models.MediaTypeTV, wantOK: true},
		{name: "null title is absent", body: `{"title":null,"name":"Dark"}`, want: models.MediaTypeTV, wantOK: true},
		{name: "unresolvable", body: `{"id":1}`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raws := decodeRaw(t, "["+tt.body+"]")
			got, ok := ResolveMediaType(raws[0])
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_FieldSelection(t *testing.T) {
	n := NewNormalizer("https://image.tmdb.org/t/p/", "w500")
	raws := decodeRaw(t, `[
		{"id":808,"title":"Shrek","name":"ignored","overview":"ogre","poster_path":"/shrek.jpg","release_date":"2001-05-18","first_air_date":"1999-01-01","vote_average":7.7,"genre_ids":[16,35]},
		{"id":808,"name":"Shrek Show","release_date":"2001-05-18","first_air_date":"2012-02-02","vote_average":6.1}
	]`)

	items := n.Normalize(raws, "")
	require.Len(t, items, 2)

	movie := items[0]
	assert.Equal(t, models.MediaTypeMovie, movie.MediaType)
	assert.Equal(t, "Shrek", movie.Title)
	assert.Equal(t, "2001-05-18", movie.ReleaseDate)
	assert.Equal(t, 7.7, movie.Rating)
	assert.Equal(t, []int{16, 35}, movie.GenreIDs)
	require.NotNil(t, movie.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/shrek.jpg", *movie.PosterURL)

	show := items[1]
	assert.Equal(t, models.MediaTypeTV, show.MediaType)
	assert.Equal(t, "Shrek Show", show.Title)
	assert.Equal(t, "2012-02-02", show.ReleaseDate)
	assert.Nil(t, show.GenreIDs)
	assert.NotEqual(t, movie.Key(), show.Key(), "ids collide across catalogs but keys do not")
}

func TestNormalize_MissingPoster(t *testing.T) {
	n := NewNormalizer("https://image.tmdb.org/t/p", "w500")
	raws := decodeRaw(t, `[
		{"id":1,"title":"a","poster_path":null},
		{"id":2,"title":"b","poster_path":""},
		{"id":3,"title":"c","poster_path":"  "},
		{"id":4,"title":"d"}
	]`)

	for _, item := range n.Normalize(raws, models.MediaTypeMovie) {
		assert.Nil(t, item.PosterURL, "item %d", item.ID)
		assert.False(t, item.HasPoster())
	}
}

func TestNormalize_DropsItemsWithoutTitle(t *testing.T) {
	n := NewNormalizer("https://image.tmdb.org/t/p", "w500")
	raws := decodeRaw(t, `[{"id":1},{"id":2,"title":"  "},{"id":3,"name":"kept"}]`)

	items := n.Normalize(raws, "")
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].ID)
}

func TestNormalize_EmptyDateIsKept(t *testing.T) {
	n := NewNormalizer("https://image.tmdb.org/t/p", "w500")
	items := n.Normalize(decodeRaw(t, `[{"id":1,"title":"Untitled Project"}]`), "")
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].ReleaseDate)
}

func TestInterleave(t *testing.T) {
	mk := func(mt models.MediaType, n int) []models.CatalogItem {
		out := make([]models.CatalogItem, n)
		for i := range out {
			out[i] = models.CatalogItem{ID: i, MediaType: mt, Title: "t"}
		}
		return out
	}

	tests := []struct {
		name   string
		movies int
		shows  int
		limit  int
		want   string
	}{
		{name: "equal", movies: 2, shows: 2, limit: 20, want: "m0 t0 m1 t1"},
		{name: "longer movies", movies: 3, shows: 1, limit: 20, want: "m0 t0 m1 m2"},
		{name: "longer shows", movies: 1, shows: 3, limit: 20, want: "m0 t0 t1 t2"},
		{name: "no movies", movies: 0, shows: 2, limit: 20, want: "t0 t1"},
		{name: "truncated", movies: 3, shows: 3, limit: 3, want: "m0 t0 m1"},
		{name: "both empty", movies: 0, shows: 0, limit: 20, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interleave(mk(models.MediaTypeMovie, tt.movies), mk(models.MediaTypeTV, tt.shows), tt.limit)
			var labels []string
			for _, item := range got {
				prefix := "m"
				if item.MediaType == models.MediaTypeTV {
					prefix = "t"
				}
				labels = append(labels, prefix+string(rune('0'+item.ID)))
			}
			assert.Equal(t, tt.want, strings.Join(labels, " "))
		})
	}
}

func TestGenreMap_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []int
	}{
		{name: "known", names: []string{"Horror", "Comedy"}, want: []int{27, 35}},
		{name: "anime aliases animation", names: []string{"Anime"}, want: []int{16}},
		{name: "duplicates collapse", names: []string{"Animation", "Anime", "Animation"}, want: []int{16}},
		{name: "case sensitive", names: []string{"horror"}, want: nil},
		{name: "unknown dropped", names: []string{"Sci-Fi", "Vaporwave"}, want: []int{878}},
		{name: "empty", names: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultGenres.Resolve(tt.names))
		})
	}
}

func TestCodesFor(t *testing.T) {
	tests := []struct {
		name  string
		mt    models.MediaType
		codes []int
		want  []int
	}{
		{name: "movie unchanged", mt: models.MediaTypeMovie, codes: []int{878, 28}, want: []int{878, 28}},
		{name: "tv sci-fi", mt: models.MediaTypeTV, codes: []int{878}, want: []int{10765}},
		{name: "tv merged genres collapse", mt: models.MediaTypeTV, codes: []int{28, 12, 35}, want: []int{10759, 35}},
		{name: "tv war", mt: models.MediaTypeTV, codes: []int{10752}, want: []int{10768}},
		{name: "tv shared code", mt: models.MediaTypeTV, codes: []int{16, 18}, want: []int{16, 18}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codesFor(tt.mt, tt.codes))
		})
	}
}
