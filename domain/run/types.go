package run

import (
	"fmt"

	"gobiome/domain/abundance"
	"gobiome/domain/core"
	"gobiome/domain/diversity"
)

// SignificantFeature is the persisted projection of one significant result
type SignificantFeature struct {
	Feature    core.FeatureID `json:"feature"`
	Method     string         `json:"method"`
	EffectSize float64        `json:"effect_size"`
	AdjustedP  *float64       `json:"padj,omitempty"`
	Detected   *bool          `json:"detected,omitempty"`
}

// Record captures the complete outcome of a pipeline run
type Record struct {
	ID                    core.RunID                 `json:"id"`
	Method                string                     `json:"method"`
	SignificanceThreshold float64                    `json:"significance_threshold"`
	StartedAt             core.Timestamp             `json:"started_at"`
	CompletedAt           core.Timestamp             `json:"completed_at"`
	TotalFeatures         int                        `json:"total_features"`
	TestedFeatures        int                        `json:"tested_features"`
	Alpha                 diversity.AlphaReport      `json:"alpha,omitempty"`
	Permanova             *diversity.PermanovaResult `json:"permanova,omitempty"`
	Significant           []SignificantFeature       `json:"significant"`
	Fingerprint           core.Hash                  `json:"fingerprint"`
}

// NewRecord starts a run record with a fresh identifier
func NewRecord(method string, threshold float64) *Record {
	return &Record{
		ID:                    core.NewRunID(),
		Method:                method,
		SignificanceThreshold: threshold,
		StartedAt:             core.Now(),
	}
}

// AddSignificant projects analysis results into persisted features
func (r *Record) AddSignificant(results []abundance.AnalysisResult) {
	for _, res := range results {
		feat := SignificantFeature{
			Feature: res.FeatureID(),
			Method:  res.Method(),
		}
		switch v := res.(type) {
		case abundance.PValueResult:
			padj := v.AdjustedP
			feat.EffectSize = v.Log2FoldChange
			feat.AdjustedP = &padj
		case abundance.DetectionResult:
			detected := v.Detected
			feat.EffectSize = v.WStatistic
			feat.Detected = &detected
		}
		r.Significant = append(r.Significant, feat)
	}
}

// Complete stamps the end time and computes the record fingerprint
func (r *Record) Complete() {
	r.CompletedAt = core.Now()
	fields := map[string]interface{}{
		"id":        r.ID,
		"method":    r.Method,
		"threshold": r.SignificanceThreshold,
		"total":     r.TotalFeatures,
		"tested":    r.TestedFeatures,
	}
	for i, f := range r.Significant {
		fields[fmt.Sprintf("sig_%d", i)] = string(f.Feature)
	}
	r.Fingerprint = core.ComputeFingerprint(fields)
}
