package methods

import (
	"context"
	"math"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
	"gobiome/internal/errors"
)

// ANCOM is an ANCOM-style compositional routine. For each feature it tests
// the additive log-ratio against every other feature between groups and
// counts rejections into a W statistic; a feature is detected when W clears
// the detection cutoff. Reports discrete detection calls, not p-values.
type ANCOM struct {
	workers int
	// alpha is the per-ratio test level, not the caller's significance
	// threshold: W counts ratio tests rejected at this level
	alpha  float64
	cutoff float64
}

// NewANCOM creates the routine with the standard 0.7 detection cutoff
func NewANCOM(workers int) *ANCOM {
	return &ANCOM{workers: workers, alpha: 0.05, cutoff: 0.7}
}

// Name returns the configuration key for this routine
func (a *ANCOM) Name() string { return "ancom" }

// Run computes W statistics and detection calls for every feature
func (a *ANCOM) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) ([]abundance.AnalysisResult, error) {
	if table.IsEmpty() {
		return nil, nil
	}
	idx1, idx2, err := splitTwoGroups(table, groups)
	if err != nil {
		return nil, err
	}

	features := table.Features()
	m := len(features)

	// Log-transformed counts with a unit pseudocount; the ratio of two
	// features is then a difference of rows
	logCounts := make([][]float64, m)
	for i, f := range features {
		row, _ := table.Row(f)
		logRow := make([]float64, len(row))
		for s, c := range row {
			logRow[s] = math.Log(float64(c) + 1)
		}
		logCounts[i] = logRow
	}

	results := make([]abundance.AnalysisResult, m)
	lowN := len(idx1) < 2 || len(idx2) < 2

	if err := forEachIndex(ctx, m, a.workers, func(i int) {
		if lowN {
			results[i] = abundance.SkippedResult{Feature: features[i], MethodName: a.Name(), Reason: abundance.SkipLowN}
			return
		}
		w := 0
		ratio := make([]float64, len(logCounts[i]))
		for j := 0; j < m; j++ {
			if j == i {
				continue
			}
			for s := range ratio {
				ratio[s] = logCounts[i][s] - logCounts[j][s]
			}
			_, p, ok := welchTTest(groupValues(ratio, idx1), groupValues(ratio, idx2))
			if ok && p < a.alpha {
				w++
			}
		}
		detected := m > 1 && float64(w) >= a.cutoff*float64(m-1)
		results[i] = abundance.DetectionResult{
			Feature:    features[i],
			MethodName: a.Name(),
			WStatistic: float64(w),
			Detected:   detected,
		}
	}); err != nil {
		return nil, errors.Wrap(err, "ancom feature sweep aborted")
	}

	return results, nil
}
