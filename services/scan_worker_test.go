package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Vidshelf/models"
)

// blockingTags holds the scan inside the first tag read until release is closed.
type blockingTags struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingTags() *blockingTags {
	return &blockingTags{entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingTags) ReadTags(string) (EmbeddedTags, bool) {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return EmbeddedTags{}, false
}

func newTestWorker(t *testing.T, tags TagReader) (*ScanWorker, *scanFixture, *ScanHistory) {
	t.Helper()
	f := newScanFixture(t, tags)
	history := NewScanHistory(f.scanner.db)
	worker := NewScanWorker(f.scanner, history, f.catalog)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = worker.Shutdown(ctx)
	})
	return worker, f, history
}

func waitEntered(t *testing.T, tags *blockingTags) {
	t.Helper()
	select {
	case <-tags.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("scan did not start")
	}
}

func TestScanWorkerRun(t *testing.T) {
	worker, f, history := newTestWorker(t, nil)
	writeFiles(t, f.movieDir, "Heat (1995).mkv")

	before := time.Now()
	report, err := worker.Run(context.Background())
	elapsed := time.Since(before)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, report.Run.Status)
	assert.LessOrEqual(t, report.Run.Duration(), elapsed)
	assert.Equal(t, 1, report.Result.MoviesAdded)
	assert.Equal(t, 1, report.Run.Added)
	assert.NotEmpty(t, report.Run.ID)

	status := worker.Status()
	assert.False(t, status.Running)
	require.NotNil(t, status.Last)
	assert.Equal(t, report.Run.ID, status.Last.ID)
	require.NotNil(t, status.LastResult)
	assert.Equal(t, 1, status.LastResult.MoviesAdded)

	runs, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.Run.ID, runs[0].ID)
	assert.Equal(t, models.ScanCompleted, runs[0].Status)
	assert.Equal(t, 1, runs[0].Added)
}

func TestScanWorkerTriggerIsExclusive(t *testing.T) {
	tags := newBlockingTags()
	worker, f, history := newTestWorker(t, tags)
	writeFiles(t, f.movieDir, "Heat (1995).mkv")

	assert.True(t, worker.Trigger())
	waitEntered(t, tags)

	status := worker.Status()
	assert.True(t, status.Running)
	require.NotNil(t, status.Current)
	currentID := status.Current.ID

	// Both triggers during the run collapse into one queued scan.
	assert.False(t, worker.Trigger())
	assert.False(t, worker.Trigger())

	close(tags.release)
	assert.Eventually(t, func() bool { return !worker.Status().Running }, 5*time.Second, 10*time.Millisecond)

	status = worker.Status()
	require.NotNil(t, status.Last)
	assert.NotEqual(t, currentID, status.Last.ID)
	assert.Equal(t, models.ScanCompleted, status.Last.Status)
	assert.Zero(t, status.Last.Added)

	first, err := history.Get(context.Background(), currentID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCompleted, first.Status)
	assert.Equal(t, 1, first.Added)

	runs, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	// A finished scan frees the worker for the next trigger.
	assert.True(t, worker.Trigger())
}

func TestScanWorkerStop(t *testing.T) {
	tags := newBlockingTags()
	worker, f, history := newTestWorker(t, tags)
	writeFiles(t, f.movieDir, "Heat (1995).mkv", "Ronin (1998).mkv")

	assert.False(t, worker.Stop())
	require.True(t, worker.Trigger())
	waitEntered(t, tags)

	// Stop also drops a queued scan.
	assert.False(t, worker.Trigger())
	assert.True(t, worker.Stop())
	close(tags.release)
	assert.Eventually(t, func() bool { return !worker.Status().Running }, 5*time.Second, 10*time.Millisecond)

	status := worker.Status()
	require.NotNil(t, status.Last)
	assert.Equal(t, models.ScanCancelled, status.Last.Status)

	run, err := history.Get(context.Background(), status.Last.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ScanCancelled, run.Status)

	runs, err := history.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestScanWorkerRunHonoursContext(t *testing.T) {
	tags := newBlockingTags()
	worker, f, _ := newTestWorker(t, tags)
	writeFiles(t, f.movieDir, "Heat (1995).mkv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	go func() {
		<-tags.entered
		close(tags.release)
	}()

	_, err := worker.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, worker.Status().Running)
}

func TestScanWorkerShutdown(t *testing.T) {
	worker, _, _ := newTestWorker(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, worker.Shutdown(ctx))

	assert.False(t, worker.Trigger())
	_, err := worker.Run(context.Background())
	assert.ErrorIs(t, err, ErrWorkerClosed)
}

func TestScanWorkerSchedule(t *testing.T) {
	worker, f, _ := newTestWorker(t, nil)
	writeFiles(t, f.movieDir, "Heat (1995).mkv")

	worker.Schedule(20 * time.Millisecond)

	assert.Eventually(t, func() bool {
		status := worker.Status()
		return status.Last != nil && status.Last.Status == models.ScanCompleted
	}, 5*time.Second, 10*time.Millisecond)
}

func TestScanWorkerRescansChangesMadeDuringScan(t *testing.T) {
	tags := newBlockingTags()
	worker, f, _ := newTestWorker(t, tags)

	started := make(chan bool, 10)
	w, err := NewWatcher(func() { started <- worker.Trigger() }, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Add(f.movieDir))
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	t.Cleanup(func() {
		cancel()
		_ = w.Close()
	})

	writeFiles(t, f.movieDir, "First (2001).mkv")
	select {
	case ok := <-started:
		assert.True(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a scan trigger")
	}
	waitEntered(t, tags)

	// The running walk has already listed the directory.
	writeFiles(t, f.movieDir, "Second (2002).mkv")
	select {
	case ok := <-started:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a trigger while the scan runs")
	}

	close(tags.release)
	assert.Eventually(t, func() bool {
		movies, err := f.catalog.Movies(context.Background())
		return err == nil && len(movies) == 2
	}, 5*time.Second, 20*time.Millisecond)
}
