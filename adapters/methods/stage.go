package methods

import (
	"context"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
	"gobiome/internal"
	"gobiome/internal/config"
)

// StageResult carries the full output of the differential abundance stage
type StageResult struct {
	// Results holds one entry per tested feature in feature-ID order
	Results []abundance.AnalysisResult
	// Significant is the subset selected by the significance filter,
	// preserving Results order
	Significant []abundance.AnalysisResult
	// TotalFeatures counts features before prefiltering
	TotalFeatures int
	// TestedFeatures counts features that survived prefiltering
	TestedFeatures int
}

// Stage runs the differential abundance analysis: prefilter, method
// dispatch, significance filtering
type Stage struct {
	registry *Registry
	logger   *internal.Logger
}

// NewStage creates the differential abundance stage
func NewStage(registry *Registry, logger *internal.Logger) *Stage {
	return &Stage{registry: registry, logger: logger}
}

// Run executes the stage. An empty table is a valid degenerate case and
// produces zero results; an unknown configured method is fatal.
func (s *Stage) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment, cfg config.DifferentialConfig) (*StageResult, error) {
	if table.IsEmpty() {
		s.logger.Warn("differential abundance: empty input table, nothing to test")
		return &StageResult{}, nil
	}

	// Resolve before doing any work so a misconfigured method aborts the
	// stage without partial output
	routine, err := s.registry.Resolve(cfg.Method)
	if err != nil {
		return nil, err
	}

	filtered := FilterLowAbundance(table, cfg.MinPrevalence, cfg.MinAbundance)
	s.logger.Info("differential abundance: %d/%d features pass prevalence >= %g or abundance >= %g",
		filtered.NumFeatures(), table.NumFeatures(), cfg.MinPrevalence, cfg.MinAbundance)

	results, err := routine.Run(ctx, filtered, groups)
	if err != nil {
		return nil, err
	}

	significant := abundance.FilterSignificant(results, cfg.SignificanceThreshold)
	s.logger.Info("differential abundance: %s found %d significant of %d tested features",
		cfg.Method, len(significant), filtered.NumFeatures())

	return &StageResult{
		Results:        results,
		Significant:    significant,
		TotalFeatures:  table.NumFeatures(),
		TestedFeatures: filtered.NumFeatures(),
	}, nil
}
