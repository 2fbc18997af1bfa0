package abundance

// FilterSignificant selects the results considered significant under the
// unified rule: a continuous result passes when its adjusted p-value is
// strictly below threshold, a detection result passes when its flag is set,
// and a result carrying neither notion never passes. Input order is
// preserved.
func FilterSignificant(results []AnalysisResult, threshold float64) []AnalysisResult {
	significant := make([]AnalysisResult, 0, len(results))
	for _, r := range results {
		if r.Significant(threshold) {
			significant = append(significant, r)
		}
	}
	return significant
}

// CountByMethod tallies results per producing method
func CountByMethod(results []AnalysisResult) map[string]int {
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Method()]++
	}
	return counts
}
