package models

import "time"

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CycleRun is one pass of the orchestrator over all targets.
type CycleRun struct {
	ID         string     `json:"id" db:"id"`
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at" db:"finished_at"`
	Status     RunStatus  `json:"status" db:"status"`
	Targets    int        `json:"targets" db:"targets"`
	NewItems   int        `json:"new_items" db:"new_items"`
	Errors     int        `json:"errors" db:"errors"`
}

// ChangeEvent records a rank-1 transition on one target.
type ChangeEvent struct {
	ID          string    `json:"id" db:"id"`
	RunID       string    `json:"run_id" db:"run_id"`
	TargetKey   string    `json:"target_key" db:"target_key"`
	OldName     string    `json:"old_name" db:"old_name"`
	NewName     string    `json:"new_name" db:"new_name"`
	Fingerprint string    `json:"fingerprint" db:"fingerprint"`
	Price       string    `json:"price" db:"price"`
	URL         string    `json:"url" db:"url"`
	DetectedAt  time.Time `json:"detected_at" db:"detected_at"`
	Notified    bool      `json:"notified" db:"notified"`
}
