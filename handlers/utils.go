package handlers

import (
	"fmt"
	"html/template"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"Vidshelf/models"
	"Vidshelf/services"
)

func GetFuncMap() template.FuncMap {
	return template.FuncMap{
		"hasPrefix": strings.HasPrefix,
		"title": func(s string) string {
			return cases.Title(language.English).String(s)
		},
		"bytes": func(n int64) string {
			if n <= 0 {
				return "-"
			}
			return humanize.Bytes(uint64(n))
		},
		"comma": func(n int) string {
			return humanize.Comma(int64(n))
		},
		"ago": func(t time.Time) string {
			if t.IsZero() {
				return "never"
			}
			return humanize.Time(t)
		},
		"duration": func(d time.Duration) string {
			if d <= 0 {
				return "-"
			}
			return d.Round(time.Second).String()
		},
		"episodeCode": func(season, episode int) string {
			return fmt.Sprintf("S%02dE%02d", season, episode)
		},
		"mediaURL": MediaURL,
	}
}

// MediaURL maps a catalog path to its URL under /media/, escaping each segment.
func MediaURL(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/media/" + strings.Join(segments, "/")
}

// ExtractGenresFromMovies returns the distinct genres of movies, sorted.
func ExtractGenresFromMovies(movies []models.Movie) []string {
	genreMap := make(map[string]bool)
	for _, m := range movies {
		for g := range strings.SplitSeq(m.Genre, ",") {
			if g = strings.TrimSpace(g); g != "" {
				genreMap[g] = true
			}
		}
	}
	var allGenres []string
	for g := range genreMap {
		allGenres = append(allGenres, g)
	}
	sort.Strings(allGenres)
	return allGenres
}

// ExtractYearsFromMovies returns the distinct known years of movies, newest first.
func ExtractYearsFromMovies(movies []models.Movie) []int {
	yearMap := make(map[int]bool)
	for _, m := range movies {
		if m.Year > 0 {
			yearMap[m.Year] = true
		}
	}
	var years []int
	for y := range yearMap {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ExtractQualitiesFromMovies returns the distinct qualities of movies, best first.
func ExtractQualitiesFromMovies(movies []models.Movie) []string {
	var qualities []string
	for _, m := range movies {
		if m.Quality != "" && !slices.Contains(qualities, m.Quality) {
			qualities = append(qualities, m.Quality)
		}
	}
	slices.SortFunc(qualities, func(a, b string) int {
		return services.CompareQuality(b, a)
	})
	return qualities
}

// filterMovies keeps movies matching genre and year that are at least minQuality.
// Empty or zero filters match everything.
func filterMovies(movies []models.Movie, genre string, year int, minQuality string) []models.Movie {
	if genre == "" && year == 0 && minQuality == "" {
		return movies
	}
	filtered := []models.Movie{}
	for _, m := range movies {
		if year != 0 && m.Year != year {
			continue
		}
		if genre != "" && !hasGenre(m.Genre, genre) {
			continue
		}
		if minQuality != "" && services.CompareQuality(m.Quality, minQuality) < 0 {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered
}

func hasGenre(genres, genre string) bool {
	for g := range strings.SplitSeq(genres, ",") {
		if strings.EqualFold(strings.TrimSpace(g), genre) {
			return true
		}
	}
	return false
}
