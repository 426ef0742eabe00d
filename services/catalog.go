package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"Vidshelf/database"
	"Vidshelf/models"
)

// Catalog answers the read queries behind the browse pages.
type Catalog struct {
	db *database.DB
}

func NewCatalog(db *database.DB) *Catalog {
	return &Catalog{db: db}
}

// CatalogCounts summarises the catalog for the home page and metrics.
type CatalogCounts struct {
	Movies    int
	Shows     int
	Episodes  int
	Locations int
}

const movieColumns = `id, location_id, title, year, path, quality, size, genre, overview, created_at`

func scanMovie(row interface{ Scan(...any) error }) (models.Movie, error) {
	var m models.Movie
	var created int64
	err := row.Scan(&m.ID, &m.LocationID, &m.Title, &m.Year, &m.Path, &m.Quality, &m.Size, &m.Genre, &m.Overview, &created)
	m.CreatedAt = time.Unix(created, 0).UTC()
	return m, err
}

func (c *Catalog) Movies(ctx context.Context) ([]models.Movie, error) {
	rows, err := c.db.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY LOWER(title), year, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

func (c *Catalog) Movie(ctx context.Context, id int64) (*models.Movie, error) {
	m, err := scanMovie(c.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("movie", id, err)
	}
	return &m, nil
}

const showColumns = `id, location_id, name, year, dir, created_at`

func scanShow(row interface{ Scan(...any) error }) (models.TVShow, error) {
	var s models.TVShow
	var created int64
	err := row.Scan(&s.ID, &s.LocationID, &s.Name, &s.Year, &s.Dir, &created)
	s.CreatedAt = time.Unix(created, 0).UTC()
	return s, err
}

func (c *Catalog) Shows(ctx context.Context) ([]models.TVShow, error) {
	rows, err := c.db.Query(ctx, `SELECT `+showColumns+` FROM tv_shows ORDER BY LOWER(name), year, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shows: %w", err)
	}
	defer rows.Close()

	shows := []models.TVShow{}
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan show: %w", err)
		}
		shows = append(shows, s)
	}
	return shows, rows.Err()
}

func (c *Catalog) Show(ctx context.Context, id int64) (*models.TVShow, error) {
	s, err := scanShow(c.db.QueryRow(ctx, `SELECT `+showColumns+` FROM tv_shows WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("show", id, err)
	}
	return &s, nil
}

const episodeColumns = `id, show, season, episode, title, path, quality, size, created_at`

func scanEpisode(row interface{ Scan(...any) error }) (models.Episode, error) {
	var e models.Episode
	var created int64
	err := row.Scan(&e.ID, &e.ShowID, &e.Season, &e.Episode, &e.Title, &e.Path, &e.Quality, &e.Size, &created)
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, err
}

// Episodes lists a show's episodes ordered by season and episode number.
func (c *Catalog) Episodes(ctx context.Context, showID int64) ([]models.Episode, error) {
	rows, err := c.db.Query(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE show = ? ORDER BY season, episode, path`, showID)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes: %w", err)
	}
	defer rows.Close()

	episodes := []models.Episode{}
	for rows.Next() {
		e, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}
	return episodes, rows.Err()
}

// Seasons groups the show's episodes by season number. Season 0 is split into
// specials, which come first, and episodes with no season at all, which come last.
func (c *Catalog) Seasons(ctx context.Context, showID int64) ([]models.Season, error) {
	episodes, err := c.Episodes(ctx, showID)
	if err != nil {
		return nil, err
	}

	specials := models.Season{Specials: true}
	var unsorted models.Season
	var numbered []models.Season
	for _, e := range episodes {
		if e.Season == 0 {
			if isSpecial(e.Path) {
				specials.Episodes = append(specials.Episodes, e)
			} else {
				unsorted.Episodes = append(unsorted.Episodes, e)
			}
			continue
		}
		if len(numbered) == 0 || numbered[len(numbered)-1].Number != e.Season {
			numbered = append(numbered, models.Season{Number: e.Season})
		}
		last := &numbered[len(numbered)-1]
		last.Episodes = append(last.Episodes, e)
	}

	var seasons []models.Season
	if len(specials.Episodes) > 0 {
		seasons = append(seasons, specials)
	}
	seasons = append(seasons, numbered...)
	if len(unsorted.Episodes) > 0 {
		seasons = append(seasons, unsorted)
	}
	return seasons, nil
}

// isSpecial reports whether a season 0 episode was marked as such, by an
// S00Exx name or a "Specials" or "Season 0" folder.
func isSpecial(p string) bool {
	base := path.Base(p)
	if _, ok := ParseEpisodeName(strings.TrimSuffix(base, path.Ext(base))); ok {
		return true
	}
	for dir := range strings.SplitSeq(path.Dir(p), "/") {
		if season, ok := ParseSeasonDir(dir); ok && season == 0 {
			return true
		}
	}
	return false
}

func (c *Catalog) Episode(ctx context.Context, id int64) (*models.Episode, error) {
	e, err := scanEpisode(c.db.QueryRow(ctx, `SELECT `+episodeColumns+` FROM episodes WHERE id = ?`, id))
	if err != nil {
		return nil, notFound("episode", id, err)
	}
	return &e, nil
}

func (c *Catalog) Counts(ctx context.Context) (CatalogCounts, error) {
	var counts CatalogCounts
	err := c.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM movies),
			(SELECT COUNT(*) FROM tv_shows),
			(SELECT COUNT(*) FROM episodes),
			(SELECT COUNT(*) FROM media_locations)
	`).Scan(&counts.Movies, &counts.Shows, &counts.Episodes, &counts.Locations)
	if err != nil {
		return counts, fmt.Errorf("failed to count catalog: %w", err)
	}
	return counts, nil
}

func notFound(kind string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %d: %w", kind, id, err)
}
