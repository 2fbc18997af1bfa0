package diversity

import (
	"math"

	"gobiome/domain/biom"
	"gobiome/domain/diversity"
	"gobiome/internal/errors"
)

// Beta computes the pairwise sample distance matrix for the given metric.
// The returned matrix always satisfies the DistanceMatrix invariants.
func Beta(table *biom.AbundanceTable, metric string) (*biom.DistanceMatrix, error) {
	var dist func(x, y []float64) float64
	switch diversity.BetaMetric(metric) {
	case diversity.MetricBrayCurtis:
		dist = brayCurtis
	case diversity.MetricJaccard:
		dist = jaccard
	default:
		return nil, errors.UnknownMethod(metric)
	}

	n := table.NumSamples()
	columns := sampleColumns(table)

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(columns[i], columns[j])
			values[i][j] = d
			values[j][i] = d
		}
	}

	return biom.NewDistanceMatrix(table.Samples, values)
}

// sampleColumns transposes the table into per-sample count vectors over the
// sorted feature order
func sampleColumns(table *biom.AbundanceTable) [][]float64 {
	n := table.NumSamples()
	features := table.Features()
	columns := make([][]float64, n)
	for i := range columns {
		columns[i] = make([]float64, len(features))
	}
	for fi, f := range features {
		row, _ := table.Row(f)
		for i, c := range row {
			columns[i][fi] = float64(c)
		}
	}
	return columns
}

// brayCurtis is the abundance-weighted dissimilarity sum|x-y| / sum(x+y)
func brayCurtis(x, y []float64) float64 {
	var num, den float64
	for i := range x {
		num += math.Abs(x[i] - y[i])
		den += x[i] + y[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// jaccard is the presence/absence dissimilarity 1 - |intersection|/|union|
func jaccard(x, y []float64) float64 {
	var intersection, union float64
	for i := range x {
		px := x[i] > 0
		py := y[i] > 0
		if px || py {
			union++
			if px && py {
				intersection++
			}
		}
	}
	if union == 0 {
		return 0
	}
	return 1 - intersection/union
}
