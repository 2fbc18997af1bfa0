package diversity

import (
	"gobiome/domain/core"
)

// AlphaMetric names a within-sample diversity measure
type AlphaMetric string

const (
	MetricShannon      AlphaMetric = "shannon"
	MetricSimpson      AlphaMetric = "simpson"
	MetricChao1        AlphaMetric = "chao1"
	MetricObservedOTUs AlphaMetric = "observed_otus"
)

// BetaMetric names a between-sample distance measure
type BetaMetric string

const (
	MetricBrayCurtis BetaMetric = "bray_curtis"
	MetricJaccard    BetaMetric = "jaccard"
)

// AlphaReport holds per-sample values for each requested alpha metric
type AlphaReport map[core.SampleID]map[AlphaMetric]float64

// PermanovaResult summarizes a permutational multivariate ANOVA.
// INVARIANTS: PValue in [0,1], R2 in [0,1], Permutations >= 1.
type PermanovaResult struct {
	FStatistic   float64 `json:"f_statistic"`
	PValue       float64 `json:"p_value"`
	R2           float64 `json:"r2"`
	Permutations int     `json:"permutations"`
}
