package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogLookups(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture(t, nil)
	writeFiles(t, f.movieDir, "Heat (1995).mkv")
	writeFiles(t, f.tvDir, "Lost (2004)/Season 1/Lost.S01E01.Pilot.mkv")

	_, err := f.scanner.Sync(ctx)
	require.NoError(t, err)

	movies, err := f.catalog.Movies(ctx)
	require.NoError(t, err)
	require.Len(t, movies, 1)

	movie, err := f.catalog.Movie(ctx, movies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Heat", movie.Title)
	assert.Equal(t, f.movies.ID, movie.LocationID)

	shows, err := f.catalog.Shows(ctx)
	require.NoError(t, err)
	require.Len(t, shows, 1)

	show, err := f.catalog.Show(ctx, shows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Lost", show.Name)
	assert.Equal(t, catalogPath(f.tv.ID, "Lost (2004)"), show.Dir)

	episodes, err := f.catalog.Episodes(ctx, show.ID)
	require.NoError(t, err)
	require.Len(t, episodes, 1)

	episode, err := f.catalog.Episode(ctx, episodes[0].ID)
	require.NoError(t, err)
	assert.Equal(t, show.ID, episode.ShowID)
	assert.Equal(t, "Pilot", episode.Title)
	assert.Equal(t, catalogPath(f.tv.ID, "Lost (2004)/Season 1/Lost.S01E01.Pilot.mkv"), episode.Path)
}

func TestCatalogSeasons(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture(t, nil)
	writeFiles(t, f.tvDir,
		"Lost/Season 1/Lost.S01E01.mkv",
		"Lost/Season 1/Lost.S01E02.mkv",
		"Lost/Season 2/Lost.S02E01.mkv",
		"Lost/Specials/Making Of.mkv",
		"Lost/Lost.S00E01.Recap.mkv",
		"Lost/Bloopers.mkv",
	)

	_, err := f.scanner.Sync(ctx)
	require.NoError(t, err)

	shows, err := f.catalog.Shows(ctx)
	require.NoError(t, err)
	require.Len(t, shows, 1)

	seasons, err := f.catalog.Seasons(ctx, shows[0].ID)
	require.NoError(t, err)
	require.Len(t, seasons, 4)

	assert.True(t, seasons[0].Specials)
	assert.Zero(t, seasons[0].Number)
	assert.Len(t, seasons[0].Episodes, 2)

	assert.Equal(t, 1, seasons[1].Number)
	assert.Len(t, seasons[1].Episodes, 2)
	assert.Equal(t, 2, seasons[2].Number)
	assert.Len(t, seasons[2].Episodes, 1)

	assert.False(t, seasons[3].Specials)
	assert.Zero(t, seasons[3].Number)
	require.Len(t, seasons[3].Episodes, 1)
	assert.Equal(t, "Bloopers", seasons[3].Episodes[0].Title)
}

func TestCatalogNotFound(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(openTestDB(t))

	_, err := catalog.Movie(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = catalog.Show(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = catalog.Episode(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	seasons, err := catalog.Seasons(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, seasons)
}

func TestCatalogEmpty(t *testing.T) {
	ctx := context.Background()
	catalog := NewCatalog(openTestDB(t))

	movies, err := catalog.Movies(ctx)
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)

	counts, err := catalog.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, CatalogCounts{}, counts)
}

func TestRemovingLocationCascadesToCatalog(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture(t, nil)
	writeFiles(t, f.tvDir, "Lost/Lost.S01E01.mkv")

	_, err := f.scanner.Sync(ctx)
	require.NoError(t, err)

	require.NoError(t, f.locations.Remove(ctx, f.tv.ID))

	counts, err := f.catalog.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Shows)
	assert.Zero(t, counts.Episodes)
	assert.Equal(t, 1, counts.Locations)
}
