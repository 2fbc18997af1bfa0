package report

import (
	"os"
	"strings"
	"testing"

	"gobiome/domain/diversity"
	"gobiome/domain/run"
)

func sampleRecord() *run.Record {
	record := run.NewRecord("deseq2", 0.05)
	record.TotalFeatures = 50
	record.TestedFeatures = 40
	record.Alpha = diversity.AlphaReport{
		"s1": {diversity.MetricShannon: 2.1, diversity.MetricChao1: 30},
		"s2": {diversity.MetricShannon: 1.8, diversity.MetricChao1: 25},
	}
	record.Permanova = &diversity.PermanovaResult{FStatistic: 5.2, PValue: 0.01, R2: 0.4, Permutations: 999}
	padj := 0.003
	record.Significant = []run.SignificantFeature{
		{Feature: "ASV1", Method: "deseq2", EffectSize: 3.2, AdjustedP: &padj},
	}
	record.Complete()
	return record
}

func TestRender(t *testing.T) {
	md := Render(sampleRecord())

	for _, want := range []string{
		"# Analysis Run",
		"Method: deseq2",
		"## Alpha Diversity",
		"## PERMANOVA",
		"## Significant Features",
		"ASV1",
		"0.003",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderNoSignificantFeatures(t *testing.T) {
	record := run.NewRecord("ancom", 0.05)
	record.Complete()
	md := Render(record)
	if !strings.Contains(md, "No features passed the significance filter") {
		t.Error("empty significant set should be stated explicitly")
	}
}

func TestRenderHTML(t *testing.T) {
	html := string(RenderHTML(Render(sampleRecord())))
	if !strings.Contains(html, "<h1") {
		t.Error("expected an h1 heading in the rendered HTML")
	}
	if !strings.Contains(html, "<table") {
		t.Error("expected rendered tables in the HTML")
	}
}

func TestGeneratorWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	record := sampleRecord()

	path, err := NewGenerator(dir).Write(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("returned path %s, want the markdown artifact", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("markdown report not written: %v", err)
	}
	htmlPath := strings.TrimSuffix(path, ".md") + ".html"
	if _, err := os.Stat(htmlPath); err != nil {
		t.Errorf("HTML report not written: %v", err)
	}
}
