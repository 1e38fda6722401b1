package tmdb

import (
	"sort"

	"github.com/LikkleOra/studio/internal/models"
)

// GenreMap maps display genre names to TMDB genre codes. Names are case-sensitive.
type GenreMap map[string]int

// DefaultGenres uses the movie catalog codes for both media types.
// TMDB has no Anime genre, so it aliases Animation.
var DefaultGenres = GenreMap{
	"Action":      28,
	"Adventure":   12,
	"Animation":   16,
	"Comedy":      35,
	"Crime":       80,
	"Documentary": 99,
	"Drama":       18,
	"Family":      10751,
	"Fantasy":     14,
	"History":     36,
	"Horror":      27,
	"Music":       10402,
	"Mystery":     9648,
	"Romance":     10749,
	"Sci-Fi":      878,
	"TV Movie":    10770,
	"Thriller":    53,
	"War":         10752,
	"Western":     37,
	"Anime":       16,
}

// tvGenreCodes maps movie genre codes to the TV catalog's combined genres.
// Codes without an entry are shared by both catalogs or have no TV
// counterpart, and are sent unchanged.
var tvGenreCodes = map[int]int{
	28:    10759, // Action & Adventure
	12:    10759,
	878:   10765, // Sci-Fi & Fantasy
	14:    10765,
	10752: 10768, // War & Politics
}

// CodeFor returns the code the given catalog files a movie genre code under.
func CodeFor(mt models.MediaType, code int) int {
	if mt == models.MediaTypeTV {
		if tv, ok := tvGenreCodes[code]; ok {
			return tv
		}
	}
	return code
}

// codesFor translates resolved movie codes for mt, dropping duplicates that
// the translation creates.
func codesFor(mt models.MediaType, codes []int) []int {
	if mt != models.MediaTypeTV {
		return codes
	}
	out := make([]int, 0, len(codes))
	seen := make(map[int]bool, len(codes))
	for _, code := range codes {
		tv := CodeFor(mt, code)
		if seen[tv] {
			continue
		}
		seen[tv] = true
		out = append(out, tv)
	}
	return out
}

// Resolve translates names to codes, dropping unknown names and duplicate codes.
func (g GenreMap) Resolve(names []string) []int {
	var ids []int
	seen := make(map[int]bool, len(names))
	for _, name := range names {
		id, ok := g[name]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// Names returns the known genre names in alphabetical order.
func (g GenreMap) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone copies the map so callers cannot mutate a client's genres after construction.
func (g GenreMap) clone() GenreMap {
	out := make(GenreMap, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}
