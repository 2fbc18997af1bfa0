package biom

import (
	"testing"

	"gobiome/domain/core"
)

func TestNewAbundanceTable(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		table, err := NewAbundanceTable(
			[]core.SampleID{"s1", "s2"},
			map[core.FeatureID][]int64{"f1": {1, 2}, "f2": {0, 3}},
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if table.NumSamples() != 2 || table.NumFeatures() != 2 {
			t.Errorf("got %d samples, %d features", table.NumSamples(), table.NumFeatures())
		}
	})

	t.Run("row length mismatch", func(t *testing.T) {
		_, err := NewAbundanceTable(
			[]core.SampleID{"s1", "s2"},
			map[core.FeatureID][]int64{"f1": {1}},
		)
		if err == nil {
			t.Error("expected error for short row")
		}
	})

	t.Run("negative count", func(t *testing.T) {
		_, err := NewAbundanceTable(
			[]core.SampleID{"s1"},
			map[core.FeatureID][]int64{"f1": {-1}},
		)
		if err == nil {
			t.Error("expected error for negative count")
		}
	})

	t.Run("duplicate sample", func(t *testing.T) {
		_, err := NewAbundanceTable(
			[]core.SampleID{"s1", "s1"},
			map[core.FeatureID][]int64{"f1": {1, 2}},
		)
		if err == nil {
			t.Error("expected error for duplicate sample ID")
		}
	})

	t.Run("empty table is valid", func(t *testing.T) {
		table, err := NewAbundanceTable(nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !table.IsEmpty() {
			t.Error("expected empty table")
		}
	})
}

func TestAbundanceTableStatistics(t *testing.T) {
	table, err := NewAbundanceTable(
		[]core.SampleID{"s1", "s2", "s3", "s4"},
		map[core.FeatureID][]int64{
			"common": {10, 20, 30, 40},
			"rare":   {5, 0, 0, 0},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := table.Prevalence("common"); got != 1.0 {
		t.Errorf("common prevalence = %g, want 1", got)
	}
	if got := table.Prevalence("rare"); got != 0.25 {
		t.Errorf("rare prevalence = %g, want 0.25", got)
	}
	if got := table.RelativeAbundance("rare"); got != 5.0/105.0 {
		t.Errorf("rare relative abundance = %g, want %g", got, 5.0/105.0)
	}
	if got := table.SampleTotal(0); got != 15 {
		t.Errorf("sample total = %d, want 15", got)
	}
	if got := table.Total(); got != 105 {
		t.Errorf("grand total = %d, want 105", got)
	}
}

func TestSubsetPreservesSamples(t *testing.T) {
	table, _ := NewAbundanceTable(
		[]core.SampleID{"s1", "s2"},
		map[core.FeatureID][]int64{"f1": {1, 2}, "f2": {3, 4}},
	)
	sub := table.Subset([]core.FeatureID{"f2", "missing"})
	if sub.NumFeatures() != 1 {
		t.Errorf("subset has %d features, want 1", sub.NumFeatures())
	}
	if sub.NumSamples() != 2 {
		t.Errorf("subset has %d samples, want 2", sub.NumSamples())
	}
}

func TestGroupAssignment(t *testing.T) {
	groups, err := NewGroupAssignment([]string{"a", "b", "a"}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := groups.Groups(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("groups = %v, want [a b]", got)
	}
	if got := groups.Indices("a"); len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("indices(a) = %v, want [0 2]", got)
	}

	if _, err := NewGroupAssignment([]string{"a"}, 2); err == nil {
		t.Error("expected error for length mismatch")
	}
	if _, err := NewGroupAssignment([]string{"a", ""}, 2); err == nil {
		t.Error("expected error for empty label")
	}
}

func TestNewDistanceMatrix(t *testing.T) {
	samples := []core.SampleID{"s1", "s2"}

	t.Run("valid", func(t *testing.T) {
		_, err := NewDistanceMatrix(samples, [][]float64{{0, 0.5}, {0.5, 0}})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("nonzero diagonal", func(t *testing.T) {
		_, err := NewDistanceMatrix(samples, [][]float64{{0.1, 0.5}, {0.5, 0}})
		if err == nil {
			t.Error("expected error for nonzero diagonal")
		}
	})

	t.Run("asymmetric", func(t *testing.T) {
		_, err := NewDistanceMatrix(samples, [][]float64{{0, 0.5}, {0.6, 0}})
		if err == nil {
			t.Error("expected error for asymmetric matrix")
		}
	})

	t.Run("negative entry", func(t *testing.T) {
		_, err := NewDistanceMatrix(samples, [][]float64{{0, -0.5}, {-0.5, 0}})
		if err == nil {
			t.Error("expected error for negative distance")
		}
	})
}

func TestReadMeanQuality(t *testing.T) {
	r := Read{ID: "r1", Seq: []byte("ACGT"), Qual: []byte{20, 30, 40, 30}}
	if got := r.MeanQuality(); got != 30 {
		t.Errorf("mean quality = %g, want 30", got)
	}
	if got := (Read{}).MeanQuality(); got != 0 {
		t.Errorf("empty read mean quality = %g, want 0", got)
	}
}
