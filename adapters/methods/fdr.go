package methods

import (
	"math"
	"sort"
)

// BenjaminiHochberg applies BH false discovery rate correction.
// NaN entries mark untested features and pass through unchanged; adjusted
// values are monotone in the input ranking and clamped to [0, 1].
func BenjaminiHochberg(pValues []float64) []float64 {
	adjusted := make([]float64, len(pValues))
	copy(adjusted, pValues)

	// Rank only the tested entries
	tested := make([]int, 0, len(pValues))
	for i, p := range pValues {
		if !math.IsNaN(p) {
			tested = append(tested, i)
		}
	}
	m := len(tested)
	if m == 0 {
		return adjusted
	}

	sort.Slice(tested, func(a, b int) bool {
		return pValues[tested[a]] < pValues[tested[b]]
	})

	// q_i = p_i * m / rank, then enforce monotonicity from the largest rank down
	qByRank := make([]float64, m)
	for rank, idx := range tested {
		qByRank[rank] = pValues[idx] * float64(m) / float64(rank+1)
	}
	for rank := m - 2; rank >= 0; rank-- {
		if qByRank[rank] > qByRank[rank+1] {
			qByRank[rank] = qByRank[rank+1]
		}
	}
	for rank, idx := range tested {
		q := qByRank[rank]
		if q > 1.0 {
			q = 1.0
		}
		adjusted[idx] = q
	}
	return adjusted
}
