package ports

import (
	"context"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
)

// AnalysisRoutine is a differential abundance method. Implementations receive
// a prefiltered table and must return one result per feature in deterministic
// order (sorted by feature ID) regardless of internal parallelism.
type AnalysisRoutine interface {
	// Name is the configuration key the routine registers under
	Name() string
	// Run tests every feature in the table for differential abundance
	// between the assigned groups
	Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) ([]abundance.AnalysisResult, error)
}
