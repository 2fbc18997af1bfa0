package testkit

import (
	"testing"
)

func TestGenerateShape(t *testing.T) {
	cfg := DefaultCommunityConfig()
	table, groups, err := NewCommunityGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantSamples := cfg.SamplesPerGroup * len(cfg.Groups)
	if table.NumSamples() != wantSamples {
		t.Errorf("samples = %d, want %d", table.NumSamples(), wantSamples)
	}
	if table.NumFeatures() != cfg.FeatureCount {
		t.Errorf("features = %d, want %d", table.NumFeatures(), cfg.FeatureCount)
	}
	if groups.Len() != wantSamples {
		t.Errorf("group labels = %d, want %d", groups.Len(), wantSamples)
	}
	if got := groups.Groups(); len(got) != len(cfg.Groups) {
		t.Errorf("distinct groups = %v, want %v", got, cfg.Groups)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultCommunityConfig()

	first, _, err := NewCommunityGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := NewCommunityGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, f := range first.Features() {
		a, _ := first.Row(f)
		b, _ := second.Row(f)
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("feature %s sample %d differs across identically seeded generators", f, i)
			}
		}
	}
}

func TestGeneratePlantsEffect(t *testing.T) {
	cfg := DefaultCommunityConfig()
	table, groups, err := NewCommunityGenerator(cfg).Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The first enriched feature should carry substantially more reads in the
	// last group than the first
	row, ok := table.Row("ASV1")
	if !ok {
		t.Fatal("ASV1 missing")
	}
	last := cfg.Groups[len(cfg.Groups)-1]
	first := cfg.Groups[0]
	var lastSum, firstSum int64
	for _, i := range groups.Indices(last) {
		lastSum += row[i]
	}
	for _, i := range groups.Indices(first) {
		firstSum += row[i]
	}
	if lastSum <= firstSum {
		t.Errorf("enriched feature has %d reads in %s vs %d in %s; expected enrichment", lastSum, last, firstSum, first)
	}
}

func TestGenerateRejectsSingleGroup(t *testing.T) {
	cfg := DefaultCommunityConfig()
	cfg.Groups = []string{"only"}
	if _, _, err := NewCommunityGenerator(cfg).Generate(); err == nil {
		t.Error("expected error for single-group config")
	}
}
