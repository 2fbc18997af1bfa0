package methods

import (
	"gobiome/domain/biom"
	"gobiome/domain/core"
)

// FilterLowAbundance drops features that are too rare to test reliably.
// A feature survives when it passes EITHER threshold: prevalence at or above
// minPrevalence, or total relative abundance at or above minAbundance. Only
// features failing both are removed.
func FilterLowAbundance(table *biom.AbundanceTable, minPrevalence, minAbundance float64) *biom.AbundanceTable {
	if table.IsEmpty() {
		return table
	}
	keep := make([]core.FeatureID, 0, table.NumFeatures())
	for _, f := range table.Features() {
		if table.Prevalence(f) >= minPrevalence || table.RelativeAbundance(f) >= minAbundance {
			keep = append(keep, f)
		}
	}
	return table.Subset(keep)
}
