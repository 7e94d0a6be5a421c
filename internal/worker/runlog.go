package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	StatusInProgress = "in_progress"
	StatusSuccess    = "success"
	StatusFailed     = "failed"
)

// RunLog is one row of meta.stage_runs: the audit record of a full
// pipeline run.
type RunLog struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`

	AssetClassesTotal  int `json:"asset_classes_total"`
	AssetClassesFailed int `json:"asset_classes_failed"`
	RowsStaged         int `json:"rows_staged"`
	RowsProd           int `json:"rows_prod"`

	ErrorMessage         *string  `json:"error_message,omitempty"`
	ExecutionTimeSeconds *float64 `json:"execution_time_seconds,omitempty"`
}

type RunLogRepository interface {
	Start(ctx context.Context, run *RunLog) error
	Finish(ctx context.Context, run *RunLog) error
}
