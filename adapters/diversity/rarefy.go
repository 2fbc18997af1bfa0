// Package diversity implements the diversity stage: rarefaction, alpha and
// beta diversity metrics, and the PERMANOVA permutation test.
package diversity

import (
	"context"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
	"gobiome/ports"
)

// Rarefier subsamples each sample to an even sequencing depth
type Rarefier struct {
	rngPort ports.RNGPort
}

// NewRarefier creates a rarefier backed by deterministic RNG streams
func NewRarefier(rngPort ports.RNGPort) *Rarefier {
	return &Rarefier{rngPort: rngPort}
}

// Rarefy subsamples every sample's counts to exactly depth reads without
// replacement. Samples with fewer than depth total reads are dropped.
// Each sample draws from its own RNG stream keyed by sample ID, so results
// are reproducible for a given seed and independent of sample order.
func (r *Rarefier) Rarefy(ctx context.Context, table *biom.AbundanceTable, depth int, seed int64) (*biom.AbundanceTable, error) {
	if depth <= 0 {
		return nil, errors.InvalidInput("rarefaction depth must be positive")
	}
	if table.IsEmpty() {
		return table, nil
	}

	features := table.Features()

	var keptSamples []core.SampleID
	var keptIdx []int
	for i, s := range table.Samples {
		if table.SampleTotal(i) >= int64(depth) {
			keptSamples = append(keptSamples, s)
			keptIdx = append(keptIdx, i)
		}
	}

	counts := make(map[core.FeatureID][]int64, len(features))
	for _, f := range features {
		counts[f] = make([]int64, len(keptSamples))
	}

	for out, orig := range keptIdx {
		rng, err := r.rngPort.Stream(ctx, "rarefy", string(table.Samples[orig]), seed)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create rarefaction stream")
		}

		// Selection sampling over the sample's read slots: each remaining
		// slot is kept with probability need/remaining, which draws a
		// uniform subset of exactly depth reads
		remaining := table.SampleTotal(orig)
		need := int64(depth)
		for _, f := range features {
			row, _ := table.Row(f)
			var kept int64
			for u := int64(0); u < row[orig] && need > 0; u++ {
				if rng.Int63n(remaining) < need {
					kept++
					need--
				}
				remaining--
			}
			counts[f][out] = kept
		}
	}

	return biom.NewAbundanceTable(keptSamples, counts)
}
