package methods

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/stat/distuv"
)

// welchTTest compares two group means allowing unequal variances.
// ok is false when either group is too small or both groups have zero
// variance; callers decide how to report the skip.
func welchTTest(group1, group2 []float64) (tStat, pValue float64, ok bool) {
	n1 := float64(len(group1))
	n2 := float64(len(group2))
	if n1 < 2 || n2 < 2 {
		return 0, 1, false
	}

	mean1, _ := stats.Mean(group1)
	mean2, _ := stats.Mean(group2)
	var1, _ := stats.SampleVariance(group1)
	var2, _ := stats.SampleVariance(group2)

	se2 := var1/n1 + var2/n2
	if se2 <= 0 {
		return 0, 1, false
	}
	tStat = (mean1 - mean2) / math.Sqrt(se2)

	// Welch-Satterthwaite degrees of freedom
	df := se2 * se2 / (var1*var1/(n1*n1*(n1-1)) + var2*var2/(n2*n2*(n2-1)))
	if math.IsNaN(df) || df <= 0 {
		return tStat, 1, true
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * dist.Survival(math.Abs(tStat))
	if pValue > 1 {
		pValue = 1
	}
	return tStat, pValue, true
}

// groupValues extracts the count values at the given sample positions
func groupValues(row []float64, indices []int) []float64 {
	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = row[idx]
	}
	return values
}

// forEachIndex runs fn over [0, n) with bounded parallelism. Each call owns
// its own output slot, so fan-in order never depends on scheduling.
func forEachIndex(ctx context.Context, n, workers int, fn func(i int)) error {
	if workers < 1 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func(i int) {
			defer sem.Release(1)
			fn(i)
		}(i)
	}
	// Drain: wait for all workers to finish
	if err := sem.Acquire(ctx, int64(workers)); err != nil {
		return err
	}
	sem.Release(int64(workers))
	return nil
}
