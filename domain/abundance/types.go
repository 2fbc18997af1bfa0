package abundance

import (
	"gobiome/domain/core"
)

// AnalysisResult is one differential-abundance finding for a single feature.
// Each statistical method family reports significance differently, so results
// are tagged variants rather than one record with optional fields: a missing
// adjusted p-value can never be mistaken for a significant one.
type AnalysisResult interface {
	// FeatureID identifies the feature the result describes
	FeatureID() core.FeatureID
	// Method names the routine that produced the result
	Method() string
	// Significant applies the unified significance rule for this variant
	Significant(threshold float64) bool
}

// PValueResult is produced by methods reporting continuous significance
// (DESeq2- and ALDEx2-style models).
// INVARIANTS: PValue and AdjustedP lie in [0, 1].
type PValueResult struct {
	Feature        core.FeatureID `json:"feature"`
	MethodName     string         `json:"method"`
	Log2FoldChange float64        `json:"log2fc"`
	PValue         float64        `json:"p_value"`
	AdjustedP      float64        `json:"padj"`
}

func (r PValueResult) FeatureID() core.FeatureID { return r.Feature }
func (r PValueResult) Method() string            { return r.MethodName }

// Significant reports padj strictly below the configured threshold
func (r PValueResult) Significant(threshold float64) bool {
	return r.AdjustedP < threshold
}

// DetectionResult is produced by methods reporting a discrete detection call
// (ANCOM-style compositional tests).
type DetectionResult struct {
	Feature    core.FeatureID `json:"feature"`
	MethodName string         `json:"method"`
	WStatistic float64        `json:"w_statistic"`
	Detected   bool           `json:"detected"`
}

func (r DetectionResult) FeatureID() core.FeatureID { return r.Feature }
func (r DetectionResult) Method() string            { return r.MethodName }

// Significant reports the method's own detection call; the threshold does not
// apply to flag-based methods.
func (r DetectionResult) Significant(threshold float64) bool {
	return r.Detected
}

// SkipReason explains why a feature produced no statistical call
type SkipReason string

const (
	SkipLowN         SkipReason = "LOW_N"         // a group had fewer than 2 usable samples
	SkipZeroVariance SkipReason = "ZERO_VARIANCE" // no variation to test
	SkipAllZero      SkipReason = "ALL_ZERO"      // feature absent from every sample
)

// SkippedResult records a feature a routine declined to test. It carries
// neither a p-value nor a detection flag and is never significant.
type SkippedResult struct {
	Feature    core.FeatureID `json:"feature"`
	MethodName string         `json:"method"`
	Reason     SkipReason     `json:"reason"`
}

func (r SkippedResult) FeatureID() core.FeatureID          { return r.Feature }
func (r SkippedResult) Method() string                     { return r.MethodName }
func (r SkippedResult) Significant(threshold float64) bool { return false }
