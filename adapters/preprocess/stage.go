package preprocess

import (
	"context"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/ports"
)

// StageResult carries the preprocessing outputs downstream stages consume
type StageResult struct {
	Table     *biom.AbundanceTable
	Sequences map[core.FeatureID]string
	Taxonomy  biom.Taxonomy
	ReadsIn   int
	ReadsKept int
}

// Stage runs quality filtering, denoising, and taxonomy assignment through
// the engine ports
type Stage struct {
	filter     ports.QualityFilterPort
	denoiser   ports.DenoiserPort
	classifier ports.TaxonomyClassifierPort
	logger     *internal.Logger
}

// NewStage creates the preprocessing stage
func NewStage(filter ports.QualityFilterPort, denoiser ports.DenoiserPort, classifier ports.TaxonomyClassifierPort, logger *internal.Logger) *Stage {
	return &Stage{
		filter:     filter,
		denoiser:   denoiser,
		classifier: classifier,
		logger:     logger,
	}
}

// Run executes the stage. Empty input is a valid degenerate case yielding an
// empty table. Samples whose reads are all filtered out stay in the output
// table with zero counts.
func (s *Stage) Run(ctx context.Context, reads map[core.SampleID][]biom.Read, cfg config.PreprocessConfig) (*StageResult, error) {
	if len(reads) == 0 {
		s.logger.Warn("preprocess: no input reads, nothing to do")
		empty, err := biom.NewAbundanceTable(nil, nil)
		if err != nil {
			return nil, err
		}
		return &StageResult{Table: empty, Sequences: map[core.FeatureID]string{}, Taxonomy: biom.Taxonomy{}}, nil
	}

	params := ports.FilterParams{
		QualityThreshold: cfg.QualityThreshold,
		MinLength:        cfg.MinReadLength,
		MaxLength:        cfg.MaxReadLength,
		TrimLeft:         cfg.TrimLeft,
		TrimRight:        cfg.TrimRight,
	}

	result := &StageResult{}
	filtered := make(map[core.SampleID][]biom.Read, len(reads))
	for sample, sampleReads := range reads {
		kept, err := s.filter.Filter(ctx, sampleReads, params)
		if err != nil {
			return nil, err
		}
		result.ReadsIn += len(sampleReads)
		result.ReadsKept += len(kept)
		filtered[sample] = kept
	}
	s.logger.Info("preprocess: quality filter kept %d of %d reads across %d samples",
		result.ReadsKept, result.ReadsIn, len(reads))

	table, sequences, err := s.denoiser.Denoise(ctx, filtered)
	if err != nil {
		return nil, err
	}
	result.Table = table
	result.Sequences = sequences
	s.logger.Info("preprocess: denoiser inferred %d features", table.NumFeatures())

	taxonomy, err := s.classifier.Classify(ctx, sequences, cfg.TaxonomyDatabase)
	if err != nil {
		return nil, err
	}
	result.Taxonomy = taxonomy

	return result, nil
}
