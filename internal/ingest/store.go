package ingest

import "context"

// Store persists runs so pending work survives a restart.
type Store interface {
	LoadRuns(ctx context.Context) ([]*Run, error)
	UpsertRun(ctx context.Context, run *Run) error
	DeleteRun(ctx context.Context, runID string) error
}
