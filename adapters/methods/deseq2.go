package methods

import (
	"context"
	"math"

	"github.com/montanaflynn/stats"

	"gobiome/domain/abundance"
	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
)

// DESeq2 is a DESeq2-style routine: median-of-ratios size factor
// normalization followed by a per-feature Welch test on log2 normalized
// counts, with Benjamini-Hochberg adjustment across the tested features.
// The full negative binomial GLM belongs to an external engine; this routine
// keeps its normalization and multiple-testing discipline.
type DESeq2 struct {
	workers int
}

// NewDESeq2 creates the routine with the given worker budget
func NewDESeq2(workers int) *DESeq2 {
	return &DESeq2{workers: workers}
}

// Name returns the configuration key for this routine
func (d *DESeq2) Name() string { return "deseq2" }

// Run tests every feature for differential abundance between the first two
// groups in the assignment
func (d *DESeq2) Run(ctx context.Context, table *biom.AbundanceTable, groups biom.GroupAssignment) ([]abundance.AnalysisResult, error) {
	if table.IsEmpty() {
		return nil, nil
	}
	idx1, idx2, err := splitTwoGroups(table, groups)
	if err != nil {
		return nil, err
	}

	features := table.Features()
	normalized := normalizeCounts(table, features)

	pValues := make([]float64, len(features))
	foldChanges := make([]float64, len(features))
	skips := make([]abundance.SkipReason, len(features))

	if err := forEachIndex(ctx, len(features), d.workers, func(i int) {
		row := normalized[i]
		if allZero(row) {
			pValues[i] = math.NaN()
			skips[i] = abundance.SkipAllZero
			return
		}
		logRow := make([]float64, len(row))
		for s, v := range row {
			logRow[s] = math.Log2(v + 1)
		}
		g1 := groupValues(logRow, idx1)
		g2 := groupValues(logRow, idx2)
		mean1, _ := stats.Mean(g1)
		mean2, _ := stats.Mean(g2)
		foldChanges[i] = mean1 - mean2

		_, p, ok := welchTTest(g1, g2)
		if !ok {
			pValues[i] = math.NaN()
			if len(g1) < 2 || len(g2) < 2 {
				skips[i] = abundance.SkipLowN
			} else {
				skips[i] = abundance.SkipZeroVariance
			}
			return
		}
		pValues[i] = p
	}); err != nil {
		return nil, errors.Wrap(err, "deseq2 feature sweep aborted")
	}

	adjusted := BenjaminiHochberg(pValues)
	return assemblePValueResults(d.Name(), features, foldChanges, pValues, adjusted, skips), nil
}

// splitTwoGroups validates the assignment and returns sample positions for
// the first two distinct labels
func splitTwoGroups(table *biom.AbundanceTable, groups biom.GroupAssignment) ([]int, []int, error) {
	if groups.Len() != table.NumSamples() {
		return nil, nil, errors.InvalidInput("group assignment length does not match sample count")
	}
	labels := groups.Groups()
	if len(labels) < 2 {
		return nil, nil, errors.InvalidInput("differential abundance requires at least two groups")
	}
	return groups.Indices(labels[0]), groups.Indices(labels[1]), nil
}

// normalizeCounts divides each sample by its size factor. Size factors use
// the median-of-ratios estimator over features present in every sample; when
// no such reference feature exists, library-size scaling is used instead.
func normalizeCounts(table *biom.AbundanceTable, features []core.FeatureID) [][]float64 {
	n := table.NumSamples()
	factors := sizeFactors(table, features)

	normalized := make([][]float64, len(features))
	for i, f := range features {
		row, _ := table.Row(f)
		out := make([]float64, n)
		for s, c := range row {
			out[s] = float64(c) / factors[s]
		}
		normalized[i] = out
	}
	return normalized
}

func sizeFactors(table *biom.AbundanceTable, features []core.FeatureID) []float64 {
	n := table.NumSamples()

	// Log geometric means over features with no zero counts
	logGeoMeans := make(map[core.FeatureID]float64)
	for _, f := range features {
		row, _ := table.Row(f)
		sum := 0.0
		positive := true
		for _, c := range row {
			if c <= 0 {
				positive = false
				break
			}
			sum += math.Log(float64(c))
		}
		if positive {
			logGeoMeans[f] = sum / float64(n)
		}
	}

	factors := make([]float64, n)
	if len(logGeoMeans) == 0 {
		// Fall back to library-size scaling
		var grand float64
		totals := make([]float64, n)
		for s := 0; s < n; s++ {
			totals[s] = float64(table.SampleTotal(s))
			grand += totals[s]
		}
		mean := grand / float64(n)
		for s := 0; s < n; s++ {
			if mean > 0 && totals[s] > 0 {
				factors[s] = totals[s] / mean
			} else {
				factors[s] = 1
			}
		}
		return factors
	}

	for s := 0; s < n; s++ {
		ratios := make([]float64, 0, len(logGeoMeans))
		for f, logGeo := range logGeoMeans {
			row, _ := table.Row(f)
			ratios = append(ratios, math.Log(float64(row[s]))-logGeo)
		}
		med, _ := stats.Median(ratios)
		factor := math.Exp(med)
		if factor <= 0 || math.IsNaN(factor) {
			factor = 1
		}
		factors[s] = factor
	}
	return factors
}

func allZero(row []float64) bool {
	for _, v := range row {
		if v != 0 {
			return false
		}
	}
	return true
}

// assemblePValueResults builds the ordered result list shared by the
// continuous-significance routines
func assemblePValueResults(method string, features []core.FeatureID, foldChanges, pValues, adjusted []float64, skips []abundance.SkipReason) []abundance.AnalysisResult {
	results := make([]abundance.AnalysisResult, len(features))
	for i, f := range features {
		if skips[i] != "" {
			results[i] = abundance.SkippedResult{Feature: f, MethodName: method, Reason: skips[i]}
			continue
		}
		results[i] = abundance.PValueResult{
			Feature:        f,
			MethodName:     method,
			Log2FoldChange: foldChanges[i],
			PValue:         pValues[i],
			AdjustedP:      adjusted[i],
		}
	}
	return results
}
