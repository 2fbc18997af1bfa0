package diversity

import (
	"math"

	"gobiome/domain/biom"
	"gobiome/domain/diversity"
	"gobiome/internal/errors"
)

// Alpha computes within-sample diversity for each requested metric.
// The metric set is closed; an unknown name fails the same way an unknown
// differential method does.
func Alpha(table *biom.AbundanceTable, metrics []string) (diversity.AlphaReport, error) {
	parsed := make([]diversity.AlphaMetric, len(metrics))
	for i, m := range metrics {
		switch diversity.AlphaMetric(m) {
		case diversity.MetricShannon, diversity.MetricSimpson, diversity.MetricChao1, diversity.MetricObservedOTUs:
			parsed[i] = diversity.AlphaMetric(m)
		default:
			return nil, errors.UnknownMethod(m)
		}
	}

	report := make(diversity.AlphaReport, table.NumSamples())
	if table.IsEmpty() {
		return report, nil
	}

	features := table.Features()
	for i, sample := range table.Samples {
		counts := make([]int64, 0, len(features))
		for _, f := range features {
			row, _ := table.Row(f)
			counts = append(counts, row[i])
		}

		values := make(map[diversity.AlphaMetric]float64, len(parsed))
		for _, m := range parsed {
			switch m {
			case diversity.MetricShannon:
				values[m] = shannon(counts)
			case diversity.MetricSimpson:
				values[m] = simpson(counts)
			case diversity.MetricChao1:
				values[m] = chao1(counts)
			case diversity.MetricObservedOTUs:
				values[m] = observed(counts)
			}
		}
		report[sample] = values
	}
	return report, nil
}

// shannon is the Shannon entropy H = -sum p*ln(p) over present features
func shannon(counts []int64) float64 {
	total := sum(counts)
	if total == 0 {
		return 0
	}
	h := 0.0
	for _, c := range counts {
		if c > 0 {
			p := float64(c) / float64(total)
			h -= p * math.Log(p)
		}
	}
	return h
}

// simpson is the Gini-Simpson index 1 - sum p^2
func simpson(counts []int64) float64 {
	total := sum(counts)
	if total == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sumSq += p * p
	}
	return 1 - sumSq
}

// chao1 estimates total richness from singleton and doubleton counts using
// the bias-corrected form, which stays defined when no doubletons exist
func chao1(counts []int64) float64 {
	var observed, singletons, doubletons float64
	for _, c := range counts {
		switch {
		case c == 1:
			singletons++
			observed++
		case c == 2:
			doubletons++
			observed++
		case c > 2:
			observed++
		}
	}
	return observed + singletons*(singletons-1)/(2*(doubletons+1))
}

// observed counts features present in the sample
func observed(counts []int64) float64 {
	n := 0.0
	for _, c := range counts {
		if c > 0 {
			n++
		}
	}
	return n
}

func sum(counts []int64) int64 {
	var total int64
	for _, c := range counts {
		total += c
	}
	return total
}
