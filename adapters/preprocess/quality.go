package preprocess

import (
	"context"

	"gobiome/domain/biom"
	"gobiome/ports"
)

// PhredFilter is the reference quality filter: trim fixed lengths from both
// ends, then keep reads inside the length window whose mean Phred score
// clears the threshold
type PhredFilter struct{}

// NewPhredFilter creates the reference quality filter
func NewPhredFilter() *PhredFilter {
	return &PhredFilter{}
}

// Filter applies trimming and the quality/length thresholds
func (f *PhredFilter) Filter(ctx context.Context, reads []biom.Read, params ports.FilterParams) ([]biom.Read, error) {
	kept := make([]biom.Read, 0, len(reads))
	for _, r := range reads {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		trimmed, ok := trim(r, params.TrimLeft, params.TrimRight)
		if !ok {
			continue
		}
		if trimmed.Len() < params.MinLength || trimmed.Len() > params.MaxLength {
			continue
		}
		if trimmed.MeanQuality() < params.QualityThreshold {
			continue
		}
		kept = append(kept, trimmed)
	}
	return kept, nil
}

// trim removes left and right bases; ok is false when nothing remains
func trim(r biom.Read, left, right int) (biom.Read, bool) {
	if left < 0 {
		left = 0
	}
	if right < 0 {
		right = 0
	}
	if left+right >= r.Len() {
		return biom.Read{}, false
	}
	end := r.Len() - right
	return biom.Read{
		ID:   r.ID,
		Seq:  r.Seq[left:end],
		Qual: r.Qual[left:end],
	}, true
}
