package diversity

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"golang.org/x/sync/semaphore"

	"gobiome/domain/biom"
	"gobiome/domain/diversity"
	"gobiome/internal/errors"
	"gobiome/ports"
)

// Permanova runs the permutational multivariate ANOVA over a distance matrix
type Permanova struct {
	rngPort ports.RNGPort
	workers int
}

// NewPermanova creates the test with a bounded worker budget
func NewPermanova(rngPort ports.RNGPort, workers int) *Permanova {
	if workers < 1 {
		workers = 1
	}
	return &Permanova{rngPort: rngPort, workers: workers}
}

// Run computes the pseudo-F statistic for the observed grouping and a
// Monte-Carlo p-value from permuted group assignments. Each permutation
// shuffles a private copy of the labels with its own RNG stream, so workers
// share no mutable state and results are reproducible for a given seed.
// When ctx carries a deadline and it expires mid-loop, the test returns a
// TIMEOUT error and no partial result.
func (p *Permanova) Run(ctx context.Context, dm *biom.DistanceMatrix, groups biom.GroupAssignment, permutations int, seed int64) (*diversity.PermanovaResult, error) {
	n := dm.Size()
	if groups.Len() != n {
		return nil, errors.InvalidInput("group assignment length does not match distance matrix size")
	}
	if permutations < 1 {
		return nil, errors.InvalidInput("permutation count must be at least 1")
	}
	numGroups := len(groups.Groups())
	if numGroups < 2 {
		return nil, errors.InvalidInput("PERMANOVA requires at least two groups")
	}
	if numGroups >= n {
		return nil, errors.InvalidInput("PERMANOVA requires more samples than groups")
	}

	fObs, r2 := pseudoF(dm, groups.Labels)

	fPerm := make([]float64, permutations)
	sem := semaphore.NewWeighted(int64(p.workers))
	for k := 0; k < permutations; k++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, p.loopError(ctx, err)
		}
		go func(k int) {
			defer sem.Release(1)
			rng, err := p.rngPort.Stream(ctx, "permanova", fmt.Sprintf("perm-%d", k), seed)
			if err != nil {
				fPerm[k] = math.Inf(1) // counts as extreme; never hides a real effect
				return
			}
			shuffled := make([]string, n)
			copy(shuffled, groups.Labels)
			rng.Shuffle(n, func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			fPerm[k], _ = pseudoF(dm, shuffled)
		}(k)
	}
	if err := sem.Acquire(ctx, int64(p.workers)); err != nil {
		return nil, p.loopError(ctx, err)
	}
	sem.Release(int64(p.workers))

	// Bias-corrected Monte-Carlo estimate: the observed assignment counts
	// as one permutation, keeping p in (0, 1] for any permutation count
	extreme := 0
	for _, f := range fPerm {
		if f >= fObs {
			extreme++
		}
	}
	pValue := float64(1+extreme) / float64(1+permutations)

	return &diversity.PermanovaResult{
		FStatistic:   fObs,
		PValue:       pValue,
		R2:           r2,
		Permutations: permutations,
	}, nil
}

func (p *Permanova) loopError(ctx context.Context, err error) error {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Timeout("PERMANOVA permutation test")
	}
	return errors.Wrap(err, "PERMANOVA permutation loop aborted")
}

// pseudoF computes the PERMANOVA pseudo-F statistic and R^2 directly from
// squared distances (Anderson 2001): total sum of squares from all pairs,
// within-group sums from same-group pairs.
func pseudoF(dm *biom.DistanceMatrix, labels []string) (f, r2 float64) {
	n := dm.Size()

	var ssTotal float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dm.At(i, j)
			ssTotal += d * d
		}
	}
	ssTotal /= float64(n)

	groupIdx := make(map[string][]int)
	for i, l := range labels {
		groupIdx[l] = append(groupIdx[l], i)
	}

	var ssWithin float64
	for _, idx := range groupIdx {
		if len(idx) < 2 {
			continue
		}
		var ss float64
		for a := 0; a < len(idx); a++ {
			for b := a + 1; b < len(idx); b++ {
				d := dm.At(idx[a], idx[b])
				ss += d * d
			}
		}
		ssWithin += ss / float64(len(idx))
	}

	ssBetween := ssTotal - ssWithin
	if ssBetween < 0 {
		ssBetween = 0
	}

	a := float64(len(groupIdx))
	dfBetween := a - 1
	dfWithin := float64(n) - a

	if ssTotal > 0 {
		r2 = ssBetween / ssTotal
	}
	if ssWithin == 0 || dfWithin <= 0 {
		// Perfect separation: every within-group distance is zero
		return math.Inf(1), r2
	}
	f = (ssBetween / dfBetween) / (ssWithin / dfWithin)
	return f, r2
}
