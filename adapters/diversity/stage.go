package diversity

import (
	"context"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/domain/diversity"
	"gobiome/internal"
	"gobiome/internal/config"
	"gobiome/ports"
)

// StageResult carries the full output of the diversity stage
type StageResult struct {
	Rarefied  *biom.AbundanceTable
	Alpha     diversity.AlphaReport
	Beta      *biom.DistanceMatrix
	Permanova *diversity.PermanovaResult
}

// Stage runs rarefaction, alpha/beta diversity, and PERMANOVA in sequence
type Stage struct {
	rarefier  *Rarefier
	permanova *Permanova
	logger    *internal.Logger
}

// NewStage creates the diversity stage
func NewStage(rngPort ports.RNGPort, workers int, logger *internal.Logger) *Stage {
	return &Stage{
		rarefier:  NewRarefier(rngPort),
		permanova: NewPermanova(rngPort, workers),
		logger:    logger,
	}
}

// Run executes the stage. An empty input table is a valid degenerate case.
// PERMANOVA is skipped with a warning when fewer than two groups survive
// rarefaction; metric or permutation failures remain fatal.
func (s *Stage) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment, cfg config.DiversityConfig) (*StageResult, error) {
	if table.IsEmpty() {
		s.logger.Warn("diversity: empty input table, nothing to analyze")
		return &StageResult{Rarefied: table}, nil
	}

	rarefied, err := s.rarefier.Rarefy(ctx, table, cfg.RarefactionDepth, cfg.RarefactionSeed)
	if err != nil {
		return nil, err
	}
	dropped := table.NumSamples() - rarefied.NumSamples()
	if dropped > 0 {
		s.logger.Warn("diversity: dropped %d samples below rarefaction depth %d", dropped, cfg.RarefactionDepth)
	}
	if rarefied.IsEmpty() {
		s.logger.Warn("diversity: no samples reach rarefaction depth %d", cfg.RarefactionDepth)
		return &StageResult{Rarefied: rarefied}, nil
	}

	alpha, err := Alpha(rarefied, cfg.AlphaMetrics)
	if err != nil {
		return nil, err
	}

	beta, err := Beta(rarefied, cfg.BetaMetric)
	if err != nil {
		return nil, err
	}

	result := &StageResult{Rarefied: rarefied, Alpha: alpha, Beta: beta}

	survivingGroups, ok := subsetGroups(table, rarefied, groups)
	if !ok || len(survivingGroups.Groups()) < 2 {
		s.logger.Warn("diversity: skipping PERMANOVA, need at least two groups after rarefaction")
		return result, nil
	}

	permCtx := ctx
	if cfg.PermanovaTimeout > 0 {
		var cancel context.CancelFunc
		permCtx, cancel = context.WithTimeout(ctx, cfg.PermanovaTimeout)
		defer cancel()
	}
	perm, err := s.permanova.Run(permCtx, beta, survivingGroups, cfg.PermanovaPermutations, cfg.RarefactionSeed)
	if err != nil {
		return nil, err
	}
	result.Permanova = perm

	s.logger.Info("diversity: PERMANOVA F=%.3f p=%.4f R2=%.3f over %d permutations",
		perm.FStatistic, perm.PValue, perm.R2, perm.Permutations)
	return result, nil
}

// subsetGroups realigns positional group labels with the samples that
// survived rarefaction
func subsetGroups(original, rarefied *biom.AbundanceTable, groups biom.GroupAssignment) (biom.GroupAssignment, bool) {
	if groups.Len() != original.NumSamples() {
		return biom.GroupAssignment{}, false
	}
	bysample := make(map[core.SampleID]string, original.NumSamples())
	for i, s := range original.Samples {
		bysample[s] = groups.Labels[i]
	}
	labels := make([]string, 0, rarefied.NumSamples())
	for _, s := range rarefied.Samples {
		labels = append(labels, bysample[s])
	}
	sub, err := biom.NewGroupAssignment(labels, rarefied.NumSamples())
	if err != nil {
		return biom.GroupAssignment{}, false
	}
	return sub, true
}
