package models

import "time"

type ScanRunStatus string

const (
	ScanRunning   ScanRunStatus = "running"
	ScanCompleted ScanRunStatus = "completed"
	ScanFailed    ScanRunStatus = "failed"
	ScanCancelled ScanRunStatus = "cancelled"
)

// ScanRun is the persisted record of one scan.
type ScanRun struct {
	ID         string        `json:"id"`
	Status     ScanRunStatus `json:"status"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitzero"`
	Added      int           `json:"added"`
	Removed    int           `json:"removed"`
	Error      string        `json:"error,omitempty"`
}

// Duration is zero while the run is still going.
func (r ScanRun) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
