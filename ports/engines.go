package ports

import (
	"context"

	"gobiome/domain/biom"
	"gobiome/domain/core"
)

// FilterParams carries the quality filtering thresholds from configuration
type FilterParams struct {
	QualityThreshold float64
	MinLength        int
	MaxLength        int
	TrimLeft         int
	TrimRight        int
}

// QualityFilterPort removes low-quality reads before denoising
type QualityFilterPort interface {
	Filter(ctx context.Context, reads []biom.Read, params FilterParams) ([]biom.Read, error)
}

// DenoiserPort infers exact sequence variants from filtered reads.
// Real implementations (DADA2-class error models) are external engines; the
// pipeline only depends on this contract.
type DenoiserPort interface {
	// Denoise returns the inferred abundance table and the representative
	// sequence for each feature
	Denoise(ctx context.Context, reads map[core.SampleID][]biom.Read) (*biom.AbundanceTable, map[core.FeatureID]string, error)
}

// TaxonomyClassifierPort assigns lineages to representative sequences against
// a named reference database
type TaxonomyClassifierPort interface {
	Classify(ctx context.Context, sequences map[core.FeatureID]string, database string) (biom.Taxonomy, error)
}
