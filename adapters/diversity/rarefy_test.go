package diversity

import (
	"context"
	"testing"

	"gobiome/adapters/rng"
	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
)

func mustTable(t *testing.T, samples []core.SampleID, counts map[core.FeatureID][]int64) *biom.AbundanceTable {
	t.Helper()
	table, err := biom.NewAbundanceTable(samples, counts)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

func TestRarefyEvensDepth(t *testing.T) {
	table := mustTable(t,
		[]core.SampleID{"deep", "shallow", "medium"},
		map[core.FeatureID][]int64{
			"f1": {500, 3, 40},
			"f2": {300, 2, 30},
			"f3": {200, 1, 20},
		},
	)

	rarefier := NewRarefier(rng.New())
	rarefied, err := rarefier.Rarefy(context.Background(), table, 50, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// shallow (6 reads) cannot reach depth 50 and is dropped
	if rarefied.NumSamples() != 2 {
		t.Fatalf("got %d samples, want 2", rarefied.NumSamples())
	}
	for i := range rarefied.Samples {
		if got := rarefied.SampleTotal(i); got != 50 {
			t.Errorf("sample %s total = %d, want exactly 50", rarefied.Samples[i], got)
		}
	}

	// Subsampling cannot create reads a sample never had
	for _, f := range rarefied.Features() {
		rarefiedRow, _ := rarefied.Row(f)
		originalRow, _ := table.Row(f)
		for i, s := range rarefied.Samples {
			var orig int64
			for j, os := range table.Samples {
				if os == s {
					orig = originalRow[j]
				}
			}
			if rarefiedRow[i] > orig {
				t.Errorf("feature %s sample %s: rarefied count %d exceeds original %d", f, s, rarefiedRow[i], orig)
			}
		}
	}
}

func TestRarefyDeterministic(t *testing.T) {
	table := mustTable(t,
		[]core.SampleID{"s1", "s2"},
		map[core.FeatureID][]int64{
			"f1": {120, 80},
			"f2": {60, 140},
			"f3": {20, 30},
		},
	)
	rarefier := NewRarefier(rng.New())

	first, err := rarefier.Rarefy(context.Background(), table, 100, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := rarefier.Rarefy(context.Background(), table, 100, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range first.Features() {
		a, _ := first.Row(f)
		b, _ := second.Row(f)
		for i := range a {
			if a[i] != b[i] {
				t.Errorf("feature %s sample %d: %d vs %d across identically seeded runs", f, i, a[i], b[i])
			}
		}
	}
}

func TestRarefyRejectsBadDepth(t *testing.T) {
	table := mustTable(t, []core.SampleID{"s1"}, map[core.FeatureID][]int64{"f1": {10}})
	rarefier := NewRarefier(rng.New())

	for _, depth := range []int{0, -5} {
		_, err := rarefier.Rarefy(context.Background(), table, depth, 1)
		if !errors.HasCode(err, errors.CodeInvalidInput) {
			t.Errorf("depth %d: got %v, want INVALID_INPUT", depth, err)
		}
	}
}

func TestRarefyEmptyTable(t *testing.T) {
	table := mustTable(t, nil, nil)
	rarefied, err := NewRarefier(rng.New()).Rarefy(context.Background(), table, 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rarefied.IsEmpty() {
		t.Error("rarefying an empty table should stay empty")
	}
}
