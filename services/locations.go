package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"Vidshelf/database"
	"Vidshelf/models"
)

// Locations manages media sources and their symlinks inside the media directory.
// A location with id N is served from <mediaDir>/N.
type Locations struct {
	db       *database.DB
	mediaDir string
}

func NewLocations(db *database.DB, mediaDir string) *Locations {
	return &Locations{db: db, mediaDir: mediaDir}
}

// MediaDir is the directory holding one symlink per location.
func (l *Locations) MediaDir() string {
	return l.mediaDir
}

// LinkPath returns the symlink path for a location id.
func (l *Locations) LinkPath(id int64) string {
	return filepath.Join(l.mediaDir, strconv.FormatInt(id, 10))
}

// Add registers a directory as a media source and links it into the media directory.
func (l *Locations) Add(ctx context.Context, mediaType models.MediaType, path string) (*models.MediaLocation, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("%w: unknown media type %q", ErrInvalidLocation, mediaType)
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidLocation)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidLocation, path)
	}

	if exists, err := l.pathExists(ctx, abs); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ErrLocationExists, abs)
	}

	loc := &models.MediaLocation{
		Type:      mediaType,
		Path:      abs,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	loc.ID, err = l.db.Insert(ctx, `INSERT INTO media_locations (type, path, created_at) VALUES (?, ?, ?)`,
		string(loc.Type), loc.Path, loc.CreatedAt.Unix())
	if err != nil {
		// A concurrent add of the same path loses on the unique index.
		if exists, _ := l.pathExists(ctx, abs); exists {
			return nil, fmt.Errorf("%w: %s", ErrLocationExists, abs)
		}
		return nil, fmt.Errorf("failed to insert media location: %w", err)
	}

	if err := l.link(loc); err != nil {
		if _, delErr := l.db.Exec(ctx, `DELETE FROM media_locations WHERE id = ?`, loc.ID); delErr != nil {
			slog.Error("Failed to remove media location after link error", "location_id", loc.ID, "error", delErr)
		}
		return nil, err
	}

	slog.Info("Added media location", "location_id", loc.ID, "type", loc.Type, "path", loc.Path)
	return loc, nil
}

func (l *Locations) pathExists(ctx context.Context, path string) (bool, error) {
	var id int64
	err := l.db.QueryRow(ctx, `SELECT id FROM media_locations WHERE path = ?`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up media location %s: %w", path, err)
	}
	return true, nil
}

func (l *Locations) link(loc *models.MediaLocation) error {
	if err := os.MkdirAll(l.mediaDir, 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	linkPath := l.LinkPath(loc.ID)
	// Stale link left behind by a previous database.
	if info, err := os.Lstat(linkPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(linkPath); err != nil {
			return fmt.Errorf("failed to replace stale link %s: %w", linkPath, err)
		}
	}
	if err := os.Symlink(loc.Path, linkPath); err != nil {
		return fmt.Errorf("failed to link media location %d: %w", loc.ID, err)
	}
	return nil
}

func (l *Locations) List(ctx context.Context) ([]models.MediaLocation, error) {
	return listLocations(ctx, l.db)
}

func listLocations(ctx context.Context, db *database.DB) ([]models.MediaLocation, error) {
	rows, err := db.Query(ctx, `SELECT id, type, path, created_at FROM media_locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query media locations: %w", err)
	}
	defer rows.Close()

	locations := []models.MediaLocation{}
	for rows.Next() {
		var loc models.MediaLocation
		var created int64
		if err := rows.Scan(&loc.ID, &loc.Type, &loc.Path, &created); err != nil {
			return nil, fmt.Errorf("failed to scan media location: %w", err)
		}
		loc.CreatedAt = time.Unix(created, 0).UTC()
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (l *Locations) Get(ctx context.Context, id int64) (*models.MediaLocation, error) {
	var loc models.MediaLocation
	var created int64
	err := l.db.QueryRow(ctx, `SELECT id, type, path, created_at FROM media_locations WHERE id = ?`, id).
		Scan(&loc.ID, &loc.Type, &loc.Path, &created)
	if err != nil {
		return nil, notFound("media location", id, err)
	}
	loc.CreatedAt = time.Unix(created, 0).UTC()
	return &loc, nil
}

// Remove deletes a location, every catalog row found under it, and its symlink.
func (l *Locations) Remove(ctx context.Context, id int64) error {
	res, err := l.db.Exec(ctx, `DELETE FROM media_locations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media location %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("media location %d: %w", id, ErrNotFound)
	}

	if err := os.Remove(l.LinkPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove link for media location %d: %w", id, err)
	}

	slog.Info("Removed media location", "location_id", id)
	return nil
}

// EnsureLinks recreates symlinks missing from the media directory, for example
// after the directory was wiped. It returns how many links were created.
func (l *Locations) EnsureLinks(ctx context.Context) (int, error) {
	locations, err := l.List(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range locations {
		loc := &locations[i]
		if _, err := os.Lstat(l.LinkPath(loc.ID)); err == nil {
			continue
		}
		if err := l.link(loc); err != nil {
			return created, err
		}
		created++
	}

	if created > 0 {
		slog.Info("Restored media location links", "count", created)
	}
	return created, nil
}
