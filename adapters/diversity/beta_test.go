package diversity

import (
	"math"
	"testing"

	"gobiome/domain/core"
	"gobiome/internal/errors"
)

func TestBetaBrayCurtis(t *testing.T) {
	table := mustTable(t,
		[]core.SampleID{"same1", "same2", "disjoint"},
		map[core.FeatureID][]int64{
			"f1": {10, 10, 0},
			"f2": {20, 20, 0},
			"f3": {0, 0, 30},
		},
	)

	dm, err := Beta(table, "bray_curtis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := dm.At(0, 1); got != 0 {
		t.Errorf("identical samples have distance %g, want 0", got)
	}
	if got := dm.At(0, 2); got != 1 {
		t.Errorf("disjoint samples have distance %g, want 1", got)
	}
	for i := 0; i < dm.Size(); i++ {
		if dm.At(i, i) != 0 {
			t.Errorf("diagonal (%d,%d) = %g", i, i, dm.At(i, i))
		}
		for j := 0; j < dm.Size(); j++ {
			if dm.At(i, j) != dm.At(j, i) {
				t.Errorf("matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
}

func TestBetaJaccard(t *testing.T) {
	table := mustTable(t,
		[]core.SampleID{"s1", "s2"},
		map[core.FeatureID][]int64{
			"shared_a": {5, 100},  // abundance differs, presence agrees
			"shared_b": {1, 1},
			"only_s1":  {3, 0},
			"only_s2":  {0, 7},
		},
	)

	dm, err := Beta(table, "jaccard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// union 4, intersection 2
	if got := dm.At(0, 1); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("jaccard = %g, want 0.5", got)
	}
}

func TestBetaUnknownMetric(t *testing.T) {
	table := mustTable(t, []core.SampleID{"s1"}, map[core.FeatureID][]int64{"f1": {1}})
	_, err := Beta(table, "unifrac")
	if !errors.HasCode(err, errors.CodeUnknownMethod) {
		t.Errorf("got %v, want UNKNOWN_METHOD", err)
	}
}
