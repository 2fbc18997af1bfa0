package preprocess

import (
	"bufio"
	"context"
	"os"
	"strings"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
)

// unassignedLineage labels features with no reference match
const unassignedLineage = "Unassigned"

// StaticClassifier is the reference taxonomy classifier: exact sequence
// lookup against a TSV reference of sequence<TAB>lineage rows. Probabilistic
// classifiers (naive Bayes against SILVA or Greengenes) plug in through the
// same port.
type StaticClassifier struct {
	lineages map[string]string
}

// NewStaticClassifier creates a classifier over an in-memory reference
func NewStaticClassifier(lineages map[string]string) *StaticClassifier {
	if lineages == nil {
		lineages = make(map[string]string)
	}
	return &StaticClassifier{lineages: lineages}
}

// LoadStaticClassifier reads a sequence<TAB>lineage reference file
func LoadStaticClassifier(path string) (*StaticClassifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open taxonomy reference %s", path)
	}
	defer f.Close()

	lineages := make(map[string]string)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		lineages[parts[0]] = parts[1]
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed reading taxonomy reference %s", path)
	}
	return &StaticClassifier{lineages: lineages}, nil
}

// Classify assigns lineages by exact sequence match; unmatched features are
// labeled Unassigned. The database name is accepted for interface parity but
// the static reference is whatever was loaded.
func (c *StaticClassifier) Classify(ctx context.Context, sequences map[core.FeatureID]string, database string) (biom.Taxonomy, error) {
	taxonomy := make(biom.Taxonomy, len(sequences))
	for feature, seq := range sequences {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if lineage, ok := c.lineages[seq]; ok {
			taxonomy[feature] = lineage
		} else {
			taxonomy[feature] = unassignedLineage
		}
	}
	return taxonomy, nil
}
