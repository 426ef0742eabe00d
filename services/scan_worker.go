package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"Vidshelf/metrics"
	"Vidshelf/models"
)

const scanKey = "library"

// ErrWorkerClosed is returned by Run after Shutdown.
var ErrWorkerClosed = errors.New("scan worker is shut down")

var errNoScan = errors.New("no scan in flight")

// ScanReport is the outcome of one scan.
type ScanReport struct {
	Run    models.ScanRun
	Result ScanResult
}

// ScanStatus is a snapshot of the worker for the settings page and /scan/status.
type ScanStatus struct {
	Running    bool            `json:"running"`
	Current    *models.ScanRun `json:"current,omitempty"`
	Last       *models.ScanRun `json:"last,omitempty"`
	LastResult *ScanResult     `json:"last_result,omitempty"`
}

// ScanWorker runs at most one library scan at a time in the background.
type ScanWorker struct {
	scanner *Scanner
	history *ScanHistory
	catalog *Catalog

	ctx    context.Context
	cancel context.CancelFunc
	group  singleflight.Group
	wg     sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	current    *models.ScanRun
	cancelRun  context.CancelFunc
	pending    bool
	last       *models.ScanRun
	lastResult *ScanResult
}

func NewScanWorker(scanner *Scanner, history *ScanHistory, catalog *Catalog) *ScanWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &ScanWorker{
		scanner: scanner,
		history: history,
		catalog: catalog,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Trigger starts a background scan. It returns false when a scan was already
// running or the worker is shut down. A trigger that arrives during a scan
// queues one more scan to run after it.
func (w *ScanWorker) Trigger() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return false
	}
	_, started := w.startLocked()
	if !started {
		w.pending = true
		slog.Debug("Scan already running, queued another", "scan_id", w.current.ID)
	}
	return started
}

// Run scans synchronously. A call made while a scan is running waits for
// that scan and returns its report. Cancelling ctx stops the scan.
func (w *ScanWorker) Run(ctx context.Context) (ScanReport, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ScanReport{}, ErrWorkerClosed
	}
	ch, _ := w.startLocked()
	w.mu.Unlock()

	select {
	case res := <-ch:
		report, _ := res.Val.(ScanReport)
		return report, res.Err
	case <-ctx.Done():
		w.Stop()
		res := <-ch
		report, _ := res.Val.(ScanReport)
		return report, ctx.Err()
	}
}

// startLocked joins the running scan or starts a new one. w.mu must be held.
func (w *ScanWorker) startLocked() (<-chan singleflight.Result, bool) {
	if w.current != nil {
		// The key is only forgotten under w.mu once current is cleared, so this joins.
		return w.group.DoChan(scanKey, func() (any, error) { return nil, errNoScan }), false
	}

	runCtx, cancel := context.WithCancel(w.ctx)
	start := time.Now()
	run := &models.ScanRun{
		ID:        uuid.NewString(),
		Status:    models.ScanRunning,
		StartedAt: start.UTC(),
	}
	w.current = run
	w.cancelRun = cancel

	w.wg.Add(1)
	ch := w.group.DoChan(scanKey, func() (any, error) {
		defer w.wg.Done()
		return w.execute(runCtx, *run, start)
	})
	return ch, true
}

func (w *ScanWorker) execute(ctx context.Context, run models.ScanRun, start time.Time) (any, error) {
	// Bookkeeping must survive a cancelled scan.
	bg := context.WithoutCancel(ctx)

	metrics.SetScanRunning(true)
	slog.Info("Starting media scan", "scan_id", run.ID)
	if err := w.history.Start(bg, &run); err != nil {
		slog.Error("Failed to record scan start", "scan_id", run.ID, "error", err)
	}

	result, err := w.scanner.Sync(ctx)

	// UTC drops the monotonic reading, so the end is derived from start.
	run.FinishedAt = run.StartedAt.Add(time.Since(start))
	run.Added = result.Added()
	run.Removed = result.Removed()
	switch {
	case err == nil:
		run.Status = models.ScanCompleted
	case errors.Is(err, context.Canceled):
		run.Status = models.ScanCancelled
	default:
		run.Status = models.ScanFailed
		run.Error = err.Error()
	}

	if err := w.history.Finish(bg, &run); err != nil {
		slog.Error("Failed to record scan result", "scan_id", run.ID, "error", err)
	}
	w.recordMetrics(bg, run, result)

	attrs := []any{
		"scan_id", run.ID,
		"status", run.Status,
		"added", run.Added,
		"removed", run.Removed,
		"duration", run.Duration().Round(time.Millisecond),
	}
	if run.Status == models.ScanFailed {
		slog.Error("Media scan failed", append(attrs, "error", err)...)
	} else {
		slog.Info("Media scan finished", attrs...)
	}

	w.mu.Lock()
	w.cancelRun()
	w.current = nil
	w.cancelRun = nil
	w.last = &run
	w.lastResult = &result
	w.group.Forget(scanKey)
	if w.pending && !w.closed {
		w.pending = false
		slog.Info("Starting queued media scan")
		w.startLocked()
	} else {
		metrics.SetScanRunning(false)
	}
	w.mu.Unlock()

	return ScanReport{Run: run, Result: result}, err
}

func (w *ScanWorker) recordMetrics(ctx context.Context, run models.ScanRun, result ScanResult) {
	metrics.RecordScan(string(run.Status), run.Duration())
	metrics.RecordScanChanges("movies", "added", result.MoviesAdded)
	metrics.RecordScanChanges("movies", "removed", result.MoviesRemoved)
	metrics.RecordScanChanges("shows", "added", result.ShowsAdded)
	metrics.RecordScanChanges("shows", "removed", result.ShowsRemoved)
	metrics.RecordScanChanges("episodes", "added", result.EpisodesAdded)
	metrics.RecordScanChanges("episodes", "removed", result.EpisodesRemoved)

	if err := RefreshCatalogMetrics(ctx, w.catalog); err != nil {
		slog.Warn("Failed to refresh catalog metrics", "error", err)
	}
}

// RefreshCatalogMetrics sets the catalog gauges from the current row counts.
func RefreshCatalogMetrics(ctx context.Context, catalog *Catalog) error {
	counts, err := catalog.Counts(ctx)
	if err != nil {
		return err
	}
	metrics.SetCatalogItems("movies", counts.Movies)
	metrics.SetCatalogItems("shows", counts.Shows)
	metrics.SetCatalogItems("episodes", counts.Episodes)
	metrics.SetCatalogItems("locations", counts.Locations)
	return nil
}

// Stop cancels the running scan. It reports whether there was one.
func (w *ScanWorker) Stop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = false
	if w.cancelRun == nil {
		return false
	}
	slog.Info("Stopping media scan", "scan_id", w.current.ID)
	w.cancelRun()
	return true
}

// Schedule triggers a scan every interval until the worker shuts down.
func (w *ScanWorker) Schedule(interval time.Duration) {
	if interval <= 0 {
		return
	}
	slog.Info("Scheduling periodic media scans", "interval", interval)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				slog.Debug("Running scheduled media scan")
				w.Trigger()
			}
		}
	}()
}

// Shutdown cancels any running scan and waits for the worker goroutines to exit.
func (w *ScanWorker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cancel()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *ScanWorker) Status() ScanStatus {
	w.mu.Lock()
	defer w.mu.Unlock()

	status := ScanStatus{Running: w.current != nil}
	if w.current != nil {
		current := *w.current
		status.Current = &current
	}
	if w.last != nil {
		last := *w.last
		status.Last = &last
	}
	if w.lastResult != nil {
		result := *w.lastResult
		status.LastResult = &result
	}
	return status
}
