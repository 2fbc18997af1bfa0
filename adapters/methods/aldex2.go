package methods

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
	"gobiome/internal/errors"
	"gobiome/ports"
)

// ALDEx2 is an ALDEx2-style routine: per-sample Dirichlet Monte-Carlo
// instances over the counts (a 0.5 pseudocount prior), centered log-ratio
// transformation, a Welch test per feature per instance, and the expected
// p-value across instances adjusted with Benjamini-Hochberg. Zeros are
// handled by the prior rather than dropped.
type ALDEx2 struct {
	rngPort   ports.RNGPort
	workers   int
	instances int
	seed      int64
}

// NewALDEx2 creates the routine with the default 128 Monte-Carlo instances
func NewALDEx2(rngPort ports.RNGPort, workers int) *ALDEx2 {
	return &ALDEx2{rngPort: rngPort, workers: workers, instances: 128, seed: 42}
}

// SetInstances overrides the Monte-Carlo instance count (tests use fewer)
func (a *ALDEx2) SetInstances(n int) {
	if n >= 1 {
		a.instances = n
	}
}

// Name returns the configuration key for this routine
func (a *ALDEx2) Name() string { return "aldex2" }

// Run tests every feature on CLR-transformed Monte-Carlo instances
func (a *ALDEx2) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) ([]abundance.AnalysisResult, error) {
	if table.IsEmpty() {
		return nil, nil
	}
	idx1, idx2, err := splitTwoGroups(table, groups)
	if err != nil {
		return nil, err
	}

	features := table.Features()
	m := len(features)
	n := table.NumSamples()

	if len(idx1) < 2 || len(idx2) < 2 {
		results := make([]abundance.AnalysisResult, m)
		for i, f := range features {
			results[i] = abundance.SkippedResult{Feature: f, MethodName: a.Name(), Reason: abundance.SkipLowN}
		}
		return results, nil
	}

	counts := make([][]float64, m)
	for i, f := range features {
		row, _ := table.Row(f)
		vals := make([]float64, n)
		for s, c := range row {
			vals[s] = float64(c)
		}
		counts[i] = vals
	}

	// One p-value and CLR mean difference per feature per instance
	instanceP := make([][]float64, a.instances)
	instanceDiff := make([][]float64, a.instances)

	if err := forEachIndex(ctx, a.instances, a.workers, func(k int) {
		rng, rngErr := a.rngPort.Stream(ctx, "aldex2", fmt.Sprintf("instance-%d", k), a.seed)
		if rngErr != nil {
			return
		}
		clr := a.sampleCLRInstance(counts, m, n, rng)

		ps := make([]float64, m)
		diffs := make([]float64, m)
		for i := 0; i < m; i++ {
			g1 := groupValues(clr[i], idx1)
			g2 := groupValues(clr[i], idx2)
			diffs[i] = mean(g1) - mean(g2)
			if _, p, ok := welchTTest(g1, g2); ok {
				ps[i] = p
			} else {
				ps[i] = 1
			}
		}
		instanceP[k] = ps
		instanceDiff[k] = diffs
	}); err != nil {
		return nil, errors.Wrap(err, "aldex2 instance sweep aborted")
	}

	// Expected p-value and effect across instances
	pValues := make([]float64, m)
	foldChanges := make([]float64, m)
	skips := make([]abundance.SkipReason, m)
	for i := 0; i < m; i++ {
		var pSum, dSum float64
		used := 0
		for k := 0; k < a.instances; k++ {
			if instanceP[k] == nil {
				continue
			}
			pSum += instanceP[k][i]
			dSum += instanceDiff[k][i]
			used++
		}
		if used == 0 {
			pValues[i] = math.NaN()
			skips[i] = abundance.SkipZeroVariance
			continue
		}
		pValues[i] = pSum / float64(used)
		// CLR differences are in natural log units; report log2
		foldChanges[i] = dSum / float64(used) / math.Ln2
	}

	adjusted := BenjaminiHochberg(pValues)
	return assemblePValueResults(a.Name(), features, foldChanges, pValues, adjusted, skips), nil
}

// sampleCLRInstance draws one Dirichlet instance per sample and returns the
// centered log-ratio matrix indexed [feature][sample]. The Dirichlet draw is
// composed from Gamma variates; the normalizing constant cancels under CLR.
func (a *ALDEx2) sampleCLRInstance(counts [][]float64, m, n int, rng *rand.Rand) [][]float64 {
	clr := make([][]float64, m)
	for i := range clr {
		clr[i] = make([]float64, n)
	}
	logDraws := make([]float64, m)
	for s := 0; s < n; s++ {
		var logSum float64
		for i := 0; i < m; i++ {
			g := distuv.Gamma{Alpha: counts[i][s] + 0.5, Beta: 1, Src: rng}
			draw := g.Rand()
			if draw <= 0 {
				draw = math.SmallestNonzeroFloat64
			}
			logDraws[i] = math.Log(draw)
			logSum += logDraws[i]
		}
		center := logSum / float64(m)
		for i := 0; i < m; i++ {
			clr[i][s] = logDraws[i] - center
		}
	}
	return clr
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
