package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vidshelf/models"
	"Vidshelf/services"
)

func TestMediaURL(t *testing.T) {
	assert.Equal(t, "/media/1/Heat%20%281995%29.mkv", MediaURL("1/Heat (1995).mkv"))
	assert.Equal(t, "/media/2/Lost/Season%201/ep%231.mkv", MediaURL("2/Lost/Season 1/ep#1.mkv"))
}

func TestExtractFromMovies(t *testing.T) {
	movies := []models.Movie{
		{Title: "Heat", Year: 1995, Genre: "Crime, Thriller", Quality: services.Quality720p},
		{Title: "Ronin", Year: 1998, Genre: "Thriller", Quality: services.Quality4K},
		{Title: "Untitled", Quality: services.QualityUnknown},
		{Title: "Heat", Year: 1995, Quality: services.Quality720p},
	}

	assert.Equal(t, []string{"Crime", "Thriller"}, ExtractGenresFromMovies(movies))
	assert.Equal(t, []int{1998, 1995}, ExtractYearsFromMovies(movies))
	assert.Equal(t, []string{services.Quality4K, services.Quality720p, services.QualityUnknown}, ExtractQualitiesFromMovies(movies))
}

func TestFilterMovies(t *testing.T) {
	movies := []models.Movie{
		{Title: "Heat", Year: 1995, Genre: "Crime, Thriller", Quality: services.Quality720p},
		{Title: "Ronin", Year: 1998, Genre: "Thriller", Quality: services.Quality1080p},
	}

	assert.Len(t, filterMovies(movies, "", 0, ""), 2)
	assert.Len(t, filterMovies(movies, "thriller", 0, ""), 2)
	assert.Len(t, filterMovies(movies, "Crime", 0, ""), 1)
	assert.Len(t, filterMovies(movies, "", 1998, ""), 1)
	assert.Empty(t, filterMovies(movies, "Crime", 1998, ""))

	assert.Len(t, filterMovies(movies, "", 0, services.Quality720p), 2)
	better := filterMovies(movies, "", 0, services.Quality1080p)
	require.Len(t, better, 1)
	assert.Equal(t, "Ronin", better[0].Title)
	assert.Empty(t, filterMovies(movies, "", 0, services.Quality4K))
}

func TestFuncMap(t *testing.T) {
	funcs := GetFuncMap()

	assert.Equal(t, "S02E05", funcs["episodeCode"].(func(int, int) string)(2, 5))
	assert.Equal(t, "-", funcs["bytes"].(func(int64) string)(0))
	assert.Equal(t, "1.5 kB", funcs["bytes"].(func(int64) string)(1500))
	assert.Equal(t, "1,234", funcs["comma"].(func(int) string)(1234))
	assert.Equal(t, "never", funcs["ago"].(func(time.Time) string)(time.Time{}))
	assert.Equal(t, "1m30s", funcs["duration"].(func(time.Duration) string)(90*time.Second))
	assert.Equal(t, "Movie", funcs["title"].(func(string) string)("movie"))
}
