// Package app wires configuration, stages, and persistence into the
// analysis pipeline.
package app

import (
	"context"

	"gobiome/adapters/diversity"
	"gobiome/adapters/methods"
	"gobiome/adapters/preprocess"
	"gobiome/adapters/rng"
	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/domain/run"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/ports"
)

// PipelineService orchestrates the three analysis stages and persists run
// records when a repository is configured
type PipelineService struct {
	cfg          *config.Config
	logger       *internal.Logger
	preprocess   *preprocess.Stage
	diversity    *diversity.Stage
	differential *methods.Stage
	repo         ports.RunRepository
}

// NewPipelineService builds the service with the reference engines. The
// repository is optional; without one, runs are not persisted.
func NewPipelineService(cfg *config.Config, logger *internal.Logger, repo ports.RunRepository) *PipelineService {
	rngPort := rng.New()
	registry := methods.NewRegistry(rngPort, cfg.Workers)
	return &PipelineService{
		cfg:    cfg,
		logger: logger,
		preprocess: preprocess.NewStage(
			preprocess.NewPhredFilter(),
			preprocess.NewDereplicatingDenoiser(),
			preprocess.NewStaticClassifier(nil),
			logger,
		),
		diversity:    diversity.NewStage(rngPort, cfg.Workers, logger),
		differential: methods.NewStage(registry, logger),
		repo:         repo,
	}
}

// RunPreprocessing ingests raw reads and produces an abundance table
func (s *PipelineService) RunPreprocessing(ctx context.Context, reads map[core.SampleID][]biom.Read) (*preprocess.StageResult, error) {
	return s.preprocess.Run(ctx, reads, s.cfg.Preprocess)
}

// RunDiversity computes rarefaction, alpha/beta diversity, and PERMANOVA
func (s *PipelineService) RunDiversity(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) (*diversity.StageResult, error) {
	return s.diversity.Run(ctx, table, groups, s.cfg.Diversity)
}

// RunDifferential tests features for differential abundance between groups
func (s *PipelineService) RunDifferential(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) (*methods.StageResult, error) {
	return s.differential.Run(ctx, table, groups, s.cfg.Differential)
}

// Run executes diversity and differential abundance on a table and returns
// the completed run record. Persistence failures are fatal; the analysis
// result is not reported as saved when it was not.
func (s *PipelineService) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) (*run.Record, *diversity.StageResult, *methods.StageResult, error) {
	record := run.NewRecord(s.cfg.Differential.Method, s.cfg.Differential.SignificanceThreshold)
	s.logger.Info("pipeline: run %s started with method %s", record.ID, record.Method)

	div, err := s.RunDiversity(ctx, table, groups)
	if err != nil {
		return nil, nil, nil, err
	}
	diff, err := s.RunDifferential(ctx, table, groups)
	if err != nil {
		return nil, nil, nil, err
	}

	record.TotalFeatures = diff.TotalFeatures
	record.TestedFeatures = diff.TestedFeatures
	record.Alpha = div.Alpha
	record.Permanova = div.Permanova
	record.AddSignificant(diff.Significant)
	record.Complete()

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, record); err != nil {
			return nil, nil, nil, err
		}
		s.logger.Info("pipeline: run %s saved", record.ID)
	}

	s.logger.Info("pipeline: run %s complete, %d significant of %d tested features",
		record.ID, len(record.Significant), record.TestedFeatures)
	return record, div, diff, nil
}
