package biom

import (
	"fmt"
	"math"
	"sort"

	"gobiome/domain/core"
)

// AbundanceTable holds per-sample counts for each feature (ASV or taxon).
// INVARIANTS:
// - every feature row has exactly len(Samples) entries
// - counts are non-negative
type AbundanceTable struct {
	Samples []core.SampleID            `json:"samples"`
	Counts  map[core.FeatureID][]int64 `json:"counts"`
}

// NewAbundanceTable creates a table and validates its invariants
func NewAbundanceTable(samples []core.SampleID, counts map[core.FeatureID][]int64) (*AbundanceTable, error) {
	n := len(samples)
	seen := make(map[core.SampleID]bool, n)
	for _, s := range samples {
		if s == "" {
			return nil, fmt.Errorf("sample ID cannot be empty")
		}
		if seen[s] {
			return nil, fmt.Errorf("duplicate sample ID %q", s)
		}
		seen[s] = true
	}
	for feature, row := range counts {
		if feature == "" {
			return nil, fmt.Errorf("feature ID cannot be empty")
		}
		if len(row) != n {
			return nil, fmt.Errorf("feature %q has %d counts, expected %d", feature, len(row), n)
		}
		for i, c := range row {
			if c < 0 {
				return nil, fmt.Errorf("feature %q has negative count %d for sample %q", feature, c, samples[i])
			}
		}
	}
	return &AbundanceTable{Samples: samples, Counts: counts}, nil
}

// NumSamples returns the number of samples
func (t *AbundanceTable) NumSamples() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

// NumFeatures returns the number of features
func (t *AbundanceTable) NumFeatures() int {
	if t == nil {
		return 0
	}
	return len(t.Counts)
}

// IsEmpty reports whether the table carries no usable data
func (t *AbundanceTable) IsEmpty() bool {
	return t == nil || len(t.Samples) == 0 || len(t.Counts) == 0
}

// Features returns feature IDs in deterministic (sorted) order
func (t *AbundanceTable) Features() []core.FeatureID {
	if t == nil {
		return nil
	}
	features := make([]core.FeatureID, 0, len(t.Counts))
	for f := range t.Counts {
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i] < features[j] })
	return features
}

// Row returns the count vector for a feature
func (t *AbundanceTable) Row(feature core.FeatureID) ([]int64, bool) {
	if t == nil {
		return nil, false
	}
	row, ok := t.Counts[feature]
	return row, ok
}

// SampleTotal returns the total count for the sample at index i
func (t *AbundanceTable) SampleTotal(i int) int64 {
	if t == nil || i < 0 || i >= len(t.Samples) {
		return 0
	}
	var total int64
	for _, row := range t.Counts {
		total += row[i]
	}
	return total
}

// Total returns the grand total count across all features and samples
func (t *AbundanceTable) Total() int64 {
	if t == nil {
		return 0
	}
	var total int64
	for _, row := range t.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Prevalence returns the fraction of samples where the feature is present
func (t *AbundanceTable) Prevalence(feature core.FeatureID) float64 {
	row, ok := t.Row(feature)
	if !ok || len(row) == 0 {
		return 0
	}
	present := 0
	for _, c := range row {
		if c > 0 {
			present++
		}
	}
	return float64(present) / float64(len(row))
}

// RelativeAbundance returns the feature's share of the table's grand total
func (t *AbundanceTable) RelativeAbundance(feature core.FeatureID) float64 {
	row, ok := t.Row(feature)
	if !ok {
		return 0
	}
	grand := t.Total()
	if grand == 0 {
		return 0
	}
	var sum int64
	for _, c := range row {
		sum += c
	}
	return float64(sum) / float64(grand)
}

// Subset returns a new table restricted to the given features.
// Features absent from the table are ignored.
func (t *AbundanceTable) Subset(features []core.FeatureID) *AbundanceTable {
	if t == nil {
		return nil
	}
	counts := make(map[core.FeatureID][]int64, len(features))
	for _, f := range features {
		if row, ok := t.Counts[f]; ok {
			counts[f] = row
		}
	}
	return &AbundanceTable{Samples: t.Samples, Counts: counts}
}

// GroupAssignment maps each sample position to a group label.
// INVARIANT: len(Labels) equals the sample count of the table it describes.
type GroupAssignment struct {
	Labels []string `json:"labels"`
}

// NewGroupAssignment validates the label vector against the sample count
func NewGroupAssignment(labels []string, numSamples int) (GroupAssignment, error) {
	if len(labels) != numSamples {
		return GroupAssignment{}, fmt.Errorf("have %d group labels for %d samples", len(labels), numSamples)
	}
	for i, l := range labels {
		if l == "" {
			return GroupAssignment{}, fmt.Errorf("sample %d has an empty group label", i)
		}
	}
	return GroupAssignment{Labels: labels}, nil
}

// Groups returns distinct labels in order of first appearance
func (g GroupAssignment) Groups() []string {
	seen := make(map[string]bool)
	groups := make([]string, 0, 2)
	for _, l := range g.Labels {
		if !seen[l] {
			seen[l] = true
			groups = append(groups, l)
		}
	}
	return groups
}

// Indices returns the sample positions carrying the given label
func (g GroupAssignment) Indices(label string) []int {
	var idx []int
	for i, l := range g.Labels {
		if l == label {
			idx = append(idx, i)
		}
	}
	return idx
}

// Len returns the number of assigned samples
func (g GroupAssignment) Len() int {
	return len(g.Labels)
}

// symmetryTolerance absorbs floating-point drift when validating matrices
// produced by real metric implementations.
const symmetryTolerance = 1e-9

// DistanceMatrix is a square matrix of pairwise sample distances.
// INVARIANTS: symmetric, zero diagonal, non-negative entries.
type DistanceMatrix struct {
	Samples []core.SampleID `json:"samples"`
	Values  [][]float64     `json:"values"`
}

// NewDistanceMatrix creates a distance matrix and validates its invariants
func NewDistanceMatrix(samples []core.SampleID, values [][]float64) (*DistanceMatrix, error) {
	n := len(samples)
	if len(values) != n {
		return nil, fmt.Errorf("matrix has %d rows for %d samples", len(values), n)
	}
	for i, row := range values {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	for i := 0; i < n; i++ {
		if values[i][i] != 0 {
			return nil, fmt.Errorf("diagonal entry (%d,%d) is %g, expected 0", i, i, values[i][i])
		}
		for j := i + 1; j < n; j++ {
			if values[i][j] < 0 {
				return nil, fmt.Errorf("entry (%d,%d) is negative: %g", i, j, values[i][j])
			}
			if math.Abs(values[i][j]-values[j][i]) > symmetryTolerance {
				return nil, fmt.Errorf("matrix not symmetric at (%d,%d): %g vs %g", i, j, values[i][j], values[j][i])
			}
		}
	}
	return &DistanceMatrix{Samples: samples, Values: values}, nil
}

// Size returns the number of samples
func (m *DistanceMatrix) Size() int {
	if m == nil {
		return 0
	}
	return len(m.Samples)
}

// At returns the distance between samples i and j
func (m *DistanceMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Read is a single sequencing read with per-base Phred quality scores.
// Qual holds raw Phred values (not ASCII-offset characters).
type Read struct {
	ID   string
	Seq  []byte
	Qual []byte
}

// MeanQuality returns the average Phred score of the read
func (r Read) MeanQuality() float64 {
	if len(r.Qual) == 0 {
		return 0
	}
	sum := 0
	for _, q := range r.Qual {
		sum += int(q)
	}
	return float64(sum) / float64(len(r.Qual))
}

// Len returns the read length
func (r Read) Len() int {
	return len(r.Seq)
}

// Taxonomy maps feature IDs to taxonomic lineages
type Taxonomy map[core.FeatureID]string
