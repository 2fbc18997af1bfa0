package ports

import (
	"context"

	"gobiome/domain/core"
	"gobiome/domain/run"
)

// RunRepository persists completed pipeline runs
type RunRepository interface {
	SaveRun(ctx context.Context, record *run.Record) error
	GetRun(ctx context.Context, id core.RunID) (*run.Record, error)
	ListRuns(ctx context.Context, limit int) ([]*run.Record, error)
}
