package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"Vidshelf/database"
	"Vidshelf/models"
)

// ScanResult counts what one sync changed.
type ScanResult struct {
	LocationsScanned int `json:"locations_scanned"`
	LocationsSkipped int `json:"locations_skipped"`
	MoviesAdded      int `json:"movies_added"`
	MoviesRemoved    int `json:"movies_removed"`
	ShowsAdded       int `json:"shows_added"`
	ShowsRemoved     int `json:"shows_removed"`
	EpisodesAdded    int `json:"episodes_added"`
	EpisodesRemoved  int `json:"episodes_removed"`
}

func (r ScanResult) Added() int {
	return r.MoviesAdded + r.ShowsAdded + r.EpisodesAdded
}

func (r ScanResult) Removed() int {
	return r.MoviesRemoved + r.ShowsRemoved + r.EpisodesRemoved
}

func (r *ScanResult) merge(o ScanResult) {
	r.LocationsScanned += o.LocationsScanned
	r.LocationsSkipped += o.LocationsSkipped
	r.MoviesAdded += o.MoviesAdded
	r.MoviesRemoved += o.MoviesRemoved
	r.ShowsAdded += o.ShowsAdded
	r.ShowsRemoved += o.ShowsRemoved
	r.EpisodesAdded += o.EpisodesAdded
	r.EpisodesRemoved += o.EpisodesRemoved
}

// Scanner reconciles the media locations on disk with the catalog tables.
type Scanner struct {
	db   *database.DB
	tags TagReader
}

func NewScanner(db *database.DB, tags TagReader) *Scanner {
	if tags == nil {
		tags = NoTags{}
	}
	return &Scanner{db: db, tags: tags}
}

// Sync walks every media location once. New video files are inserted, rows
// whose files are gone are deleted. Locations whose root is missing are
// skipped and keep their rows, so an unmounted drive does not empty the catalog.
func (s *Scanner) Sync(ctx context.Context) (ScanResult, error) {
	var result ScanResult

	locations, err := listLocations(ctx, s.db)
	if err != nil {
		return result, err
	}

	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		root, err := resolveRoot(loc.Path)
		if err != nil {
			slog.Warn("Skipping media location", "location_id", loc.ID, "path", loc.Path, "error", err)
			result.LocationsSkipped++
			continue
		}

		var r ScanResult
		switch loc.Type {
		case models.MediaTypeMovie:
			r, err = s.syncMovies(ctx, loc, root)
		case models.MediaTypeTV:
			r, err = s.syncShows(ctx, loc, root)
		default:
			slog.Warn("Skipping media location with unknown type", "location_id", loc.ID, "type", loc.Type)
			result.LocationsSkipped++
			continue
		}
		if err != nil {
			if ctx.Err() == nil && !s.locationExists(ctx, loc.ID) {
				slog.Warn("Media location was removed during scan", "location_id", loc.ID, "error", err)
				result.LocationsSkipped++
				continue
			}
			return result, fmt.Errorf("failed to sync location %d: %w", loc.ID, err)
		}

		r.LocationsScanned = 1
		result.merge(r)
		slog.Debug("Synced media location", "location_id", loc.ID, "type", loc.Type,
			"added", r.Added(), "removed", r.Removed())
	}

	return result, nil
}

// locationExists reports false only when the location row is known to be gone.
func (s *Scanner) locationExists(ctx context.Context, id int64) bool {
	var found int64
	err := s.db.QueryRow(ctx, `SELECT id FROM media_locations WHERE id = ?`, id).Scan(&found)
	return !errors.Is(err, sql.ErrNoRows)
}

func resolveRoot(p string) (string, error) {
	root, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", p)
	}
	return root, nil
}

// catalogPath is the path stored in the database: "<location id>/<relative path>".
func catalogPath(locationID int64, rel string) string {
	return path.Join(strconv.FormatInt(locationID, 10), filepath.ToSlash(rel))
}

// walkVideos calls fn for every non-hidden video file below root.
// Unreadable directories are logged and skipped.
func walkVideos(ctx context.Context, root string, fn func(rel string, d fs.DirEntry) error) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return err
			}
			slog.Warn("Skipping unreadable path", "path", p, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if p != root && isHidden(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsVideoFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return fn(rel, d)
	})
}

func fileSize(d fs.DirEntry) int64 {
	info, err := d.Info()
	if err != nil {
		return 0
	}
	return info.Size()
}

func (s *Scanner) syncMovies(ctx context.Context, loc models.MediaLocation, root string) (ScanResult, error) {
	var result ScanResult

	existing, err := s.pathIDs(ctx, `SELECT id, path FROM movies WHERE location_id = ?`, loc.ID)
	if err != nil {
		return result, err
	}

	now := time.Now().Unix()
	seen := make(map[string]bool)
	var inserts [][]any

	err = walkVideos(ctx, root, func(rel string, d fs.DirEntry) error {
		p := catalogPath(loc.ID, rel)
		seen[p] = true
		if _, ok := existing[p]; ok {
			return nil
		}

		m := s.describeMovie(filepath.Join(root, rel), rel)
		inserts = append(inserts, []any{loc.ID, m.Title, m.Year, p, m.Quality, fileSize(d), m.Genre, m.Overview, now})
		return nil
	})
	if err != nil {
		return result, err
	}

	err = s.db.Many(ctx, `INSERT INTO movies (location_id, title, year, path, quality, size, genre, overview, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (path) DO NOTHING`, inserts)
	if err != nil {
		return result, fmt.Errorf("failed to insert movies: %w", err)
	}
	result.MoviesAdded = len(inserts)

	removed := missingIDs(existing, seen)
	if err := s.db.Many(ctx, `DELETE FROM movies WHERE id = ?`, removed); err != nil {
		return result, fmt.Errorf("failed to delete movies: %w", err)
	}
	result.MoviesRemoved = len(removed)

	return result, nil
}

// describeMovie derives catalog fields from the file name, its parent
// directory, and embedded tags when present.
func (s *Scanner) describeMovie(fullPath, rel string) models.Movie {
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	title, year := ParseMovieName(name)

	if year == 0 {
		if parent := filepath.Dir(rel); parent != "." {
			if dirTitle, dirYear := ParseMovieName(filepath.Base(parent)); dirYear != 0 {
				title, year = dirTitle, dirYear
			}
		}
	}

	m := models.Movie{
		Title:   title,
		Year:    year,
		Quality: DetectQuality(rel),
	}

	if tags, ok := s.tags.ReadTags(fullPath); ok {
		if tags.Title != "" {
			m.Title = tags.Title
		}
		if tags.Year > 0 {
			m.Year = tags.Year
		}
		m.Genre = tags.Genre
		m.Overview = tags.Comment
	}

	if m.Title == "" {
		m.Title = name
	}
	return m
}

type showEpisode struct {
	path    string
	info    EpisodeInfo
	quality string
	size    int64
}

func (s *Scanner) syncShows(ctx context.Context, loc models.MediaLocation, root string) (ScanResult, error) {
	var result ScanResult

	existingShows, err := s.pathIDs(ctx, `SELECT id, dir FROM tv_shows WHERE location_id = ?`, loc.ID)
	if err != nil {
		return result, err
	}
	existingEpisodes, err := s.pathIDs(ctx, `SELECT e.id, e.path FROM episodes e
		JOIN tv_shows s ON e.show = s.id WHERE s.location_id = ?`, loc.ID)
	if err != nil {
		return result, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return result, fmt.Errorf("failed to read %s: %w", root, err)
	}

	now := time.Now().Unix()
	seen := make(map[string]bool)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if isHidden(entry.Name()) {
			continue
		}
		if !entry.IsDir() {
			if IsVideoFile(entry.Name()) {
				slog.Debug("Ignoring video outside a show directory", "location_id", loc.ID, "file", entry.Name())
			}
			continue
		}

		episodes, err := collectEpisodes(ctx, filepath.Join(root, entry.Name()))
		if err != nil {
			return result, err
		}
		if len(episodes) == 0 {
			continue
		}

		dir := catalogPath(loc.ID, entry.Name())
		showID, ok := existingShows[dir]
		if !ok {
			name, year := ParseShowName(entry.Name())
			showID, err = s.db.Insert(ctx, `INSERT INTO tv_shows (location_id, name, year, dir, created_at) VALUES (?, ?, ?, ?, ?)`,
				loc.ID, name, year, dir, now)
			if err != nil {
				return result, fmt.Errorf("failed to insert show %q: %w", entry.Name(), err)
			}
			result.ShowsAdded++
		}

		var inserts [][]any
		for _, ep := range episodes {
			p := catalogPath(loc.ID, path.Join(entry.Name(), ep.path))
			seen[p] = true
			if _, ok := existingEpisodes[p]; ok {
				continue
			}
			inserts = append(inserts, []any{showID, ep.info.Season, ep.info.Episode, ep.info.Title, p, ep.quality, ep.size, now})
		}

		err = s.db.Many(ctx, `INSERT INTO episodes (show, season, episode, title, path, quality, size, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (path) DO NOTHING`, inserts)
		if err != nil {
			return result, fmt.Errorf("failed to insert episodes for %q: %w", entry.Name(), err)
		}
		result.EpisodesAdded += len(inserts)
	}

	removed := missingIDs(existingEpisodes, seen)
	if err := s.db.Many(ctx, `DELETE FROM episodes WHERE id = ?`, removed); err != nil {
		return result, fmt.Errorf("failed to delete episodes: %w", err)
	}
	result.EpisodesRemoved = len(removed)

	res, err := s.db.Exec(ctx, `DELETE FROM tv_shows WHERE location_id = ?
		AND NOT EXISTS (SELECT 1 FROM episodes WHERE episodes.show = tv_shows.id)`, loc.ID)
	if err != nil {
		return result, fmt.Errorf("failed to delete empty shows: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		result.ShowsRemoved = int(n)
	}

	return result, nil
}

// collectEpisodes finds the video files of one show directory. Paths are
// relative to showDir with forward slashes.
func collectEpisodes(ctx context.Context, showDir string) ([]showEpisode, error) {
	var episodes []showEpisode

	err := walkVideos(ctx, showDir, func(rel string, d fs.DirEntry) error {
		base := d.Name()
		info, ok := ParseEpisodeName(strings.TrimSuffix(base, filepath.Ext(base)))
		if !ok {
			if season, found := seasonFromDirs(filepath.Dir(rel)); found {
				info.Season = season
			}
		}

		episodes = append(episodes, showEpisode{
			path:    filepath.ToSlash(rel),
			info:    info,
			quality: DetectQuality(base),
			size:    fileSize(d),
		})
		return nil
	})
	return episodes, err
}

// seasonFromDirs looks for a season folder in dir, innermost first.
func seasonFromDirs(dir string) (int, bool) {
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		if season, ok := ParseSeasonDir(filepath.Base(dir)); ok {
			return season, true
		}
		dir = filepath.Dir(dir)
	}
	return 0, false
}

func (s *Scanner) pathIDs(ctx context.Context, query string, args ...any) (map[string]int64, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing rows: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var p string
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("failed to scan existing row: %w", err)
		}
		ids[p] = id
	}
	return ids, rows.Err()
}

func missingIDs(existing map[string]int64, seen map[string]bool) [][]any {
	var ids [][]any
	for p, id := range existing {
		if !seen[p] {
			ids = append(ids, []any{id})
		}
	}
	return ids
}
