// Package report renders pipeline run reports as markdown and HTML.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gobiome/domain/core"
	"gobiome/domain/diversity"
	"gobiome/domain/run"
	"gobiome/internal/errors"
)

// Generator renders run records into report artifacts
type Generator struct {
	outputDir string
}

// NewGenerator creates a report generator writing into outputDir
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Write renders the record to <dir>/run_<id>.md and .html and returns the
// markdown path
func (g *Generator) Write(record *run.Record) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create report directory %s", g.outputDir)
	}

	md := Render(record)
	base := filepath.Join(g.outputDir, fmt.Sprintf("run_%s", record.ID))

	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", mdPath)
	}

	htmlPath := base + ".html"
	if err := os.WriteFile(htmlPath, RenderHTML(md), 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write report %s", htmlPath)
	}
	return mdPath, nil
}

// Render builds the markdown report body for a run record
func Render(record *run.Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Run %s\n\n", record.ID)
	fmt.Fprintf(&b, "- Method: %s\n", record.Method)
	fmt.Fprintf(&b, "- Significance threshold: %g\n", record.SignificanceThreshold)
	fmt.Fprintf(&b, "- Started: %s\n", record.StartedAt)
	fmt.Fprintf(&b, "- Completed: %s\n", record.CompletedAt)
	fmt.Fprintf(&b, "- Features: %d total, %d tested\n", record.TotalFeatures, record.TestedFeatures)
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", record.Fingerprint)

	writeAlpha(&b, record.Alpha)

	if record.Permanova != nil {
		p := record.Permanova
		b.WriteString("## PERMANOVA\n\n")
		fmt.Fprintf(&b, "| F statistic | p-value | R2 | Permutations |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		fmt.Fprintf(&b, "| %.4f | %.4f | %.4f | %d |\n\n", p.FStatistic, p.PValue, p.R2, p.Permutations)
	}

	writeSignificant(&b, record.Significant)
	return b.String()
}

func writeAlpha(b *strings.Builder, alpha diversity.AlphaReport) {
	if len(alpha) == 0 {
		return
	}

	samples := make([]core.SampleID, 0, len(alpha))
	metricSet := make(map[diversity.AlphaMetric]bool)
	for s, values := range alpha {
		samples = append(samples, s)
		for m := range values {
			metricSet[m] = true
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	metrics := make([]diversity.AlphaMetric, 0, len(metricSet))
	for m := range metricSet {
		metrics = append(metrics, m)
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i] < metrics[j] })

	b.WriteString("## Alpha Diversity\n\n")
	b.WriteString("| Sample |")
	for _, m := range metrics {
		fmt.Fprintf(b, " %s |", m)
	}
	b.WriteString("\n|---|")
	for range metrics {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, s := range samples {
		fmt.Fprintf(b, "| %s |", s)
		for _, m := range metrics {
			fmt.Fprintf(b, " %.4f |", alpha[s][m])
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeSignificant(b *strings.Builder, features []run.SignificantFeature) {
	b.WriteString("## Significant Features\n\n")
	if len(features) == 0 {
		b.WriteString("No features passed the significance filter.\n")
		return
	}

	b.WriteString("| Feature | Method | Effect size | Adjusted p | Detected |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, f := range features {
		padj := "-"
		if f.AdjustedP != nil {
			padj = fmt.Sprintf("%.4g", *f.AdjustedP)
		}
		detected := "-"
		if f.Detected != nil {
			detected = fmt.Sprintf("%t", *f.Detected)
		}
		fmt.Fprintf(b, "| %s | %s | %.4f | %s | %s |\n", f.Feature, f.Method, f.EffectSize, padj, detected)
	}
}

// RenderHTML converts a markdown report body to a standalone HTML fragment
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
