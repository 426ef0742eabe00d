package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"Vidshelf/config"
	"Vidshelf/database"
	"Vidshelf/models"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(&config.Config{DatabaseURL: filepath.Join(t.TempDir(), "media.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations(context.Background()))
	return db
}

// writeFiles creates every file (with parents) below root.
func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("video"), 0o644))
	}
}

func addLocation(t *testing.T, locations *Locations, mediaType models.MediaType, path string) *models.MediaLocation {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
	loc, err := locations.Add(context.Background(), mediaType, path)
	require.NoError(t, err)
	return loc
}

// fakeTags returns tags keyed by file base name.
type fakeTags map[string]EmbeddedTags

func (f fakeTags) ReadTags(path string) (EmbeddedTags, bool) {
	tags, ok := f[filepath.Base(path)]
	return tags, ok
}
