package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"Vidshelf/database"
	"Vidshelf/models"
)

// ScanHistory stores one scan_runs row per scan.
type ScanHistory struct {
	db *database.DB
}

func NewScanHistory(db *database.DB) *ScanHistory {
	return &ScanHistory{db: db}
}

func (h *ScanHistory) Start(ctx context.Context, run *models.ScanRun) error {
	_, err := h.db.Exec(ctx, `INSERT INTO scan_runs (id, status, started_at, finished_at, added, removed, error)
		VALUES (?, ?, ?, 0, 0, 0, '')`, run.ID, string(run.Status), run.StartedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to record scan run %s: %w", run.ID, err)
	}
	return nil
}

func (h *ScanHistory) Finish(ctx context.Context, run *models.ScanRun) error {
	_, err := h.db.Exec(ctx, `UPDATE scan_runs SET status = ?, finished_at = ?, added = ?, removed = ?, error = ? WHERE id = ?`,
		string(run.Status), run.FinishedAt.Unix(), run.Added, run.Removed, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update scan run %s: %w", run.ID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (h *ScanHistory) Recent(ctx context.Context, limit int) ([]models.ScanRun, error) {
	rows, err := h.db.Query(ctx, `SELECT id, status, started_at, finished_at, added, removed, error
		FROM scan_runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer rows.Close()

	runs := []models.ScanRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (h *ScanHistory) Get(ctx context.Context, id string) (*models.ScanRun, error) {
	run, err := scanRun(h.db.QueryRow(ctx, `SELECT id, status, started_at, finished_at, added, removed, error
		FROM scan_runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("scan run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan run %s: %w", id, err)
	}
	return &run, nil
}

// MarkInterrupted fails runs left in the running state by a previous process.
func (h *ScanHistory) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := h.db.Exec(ctx, `UPDATE scan_runs SET status = ?, finished_at = ?, error = ? WHERE status = ?`,
		string(models.ScanFailed), time.Now().Unix(), "interrupted by restart", string(models.ScanRunning))
	if err != nil {
		return 0, fmt.Errorf("failed to mark interrupted scans: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(row interface{ Scan(...any) error }) (models.ScanRun, error) {
	var run models.ScanRun
	var status string
	var started, finished int64
	err := row.Scan(&run.ID, &status, &started, &finished, &run.Added, &run.Removed, &run.Error)
	run.Status = models.ScanRunStatus(status)
	run.StartedAt = time.Unix(started, 0).UTC()
	if finished > 0 {
		run.FinishedAt = time.Unix(finished, 0).UTC()
	}
	return run, err
}
