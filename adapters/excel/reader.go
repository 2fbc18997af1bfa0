// Package excel loads abundance tables and sample metadata from spreadsheet
// artifacts.
package excel

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"gobiome/domain/biom"
	"gobiome/domain/core"
	"gobiome/internal/errors"
	"gobiome/ports"
)

const (
	abundanceSheet = "abundance"
	metadataSheet  = "metadata"
)

// TableReader reads an abundance workbook: an "abundance" sheet whose header
// row carries sample IDs and whose first column carries feature IDs, and a
// "metadata" sheet mapping sample IDs to group labels.
type TableReader struct {
	filePath string
}

// NewTableReader creates a reader for the given workbook path
func NewTableReader(filePath string) *TableReader {
	return &TableReader{filePath: filePath}
}

var _ ports.TableReader = (*TableReader)(nil)

// ReadTable loads the table and group assignment from the workbook
func (r *TableReader) ReadTable(ctx context.Context) (*biom.AbundanceTable, biom.GroupAssignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, biom.GroupAssignment{}, err
	}
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, biom.GroupAssignment{}, errors.NotFound(fmt.Sprintf("abundance workbook %s", r.filePath))
	}

	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, biom.GroupAssignment{}, errors.InvalidInput(fmt.Sprintf("failed to open workbook %s: %v", r.filePath, err))
	}
	defer f.Close()

	table, err := r.readAbundance(f)
	if err != nil {
		return nil, biom.GroupAssignment{}, err
	}
	groups, err := r.readGroups(f, table.Samples)
	if err != nil {
		return nil, biom.GroupAssignment{}, err
	}
	return table, groups, nil
}

func (r *TableReader) readAbundance(f *excelize.File) (*biom.AbundanceTable, error) {
	rows, err := f.GetRows(abundanceSheet)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read %s sheet: %v", abundanceSheet, err))
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s sheet needs a header row and at least one feature row", abundanceSheet))
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s sheet header needs at least one sample column", abundanceSheet))
	}
	samples := make([]core.SampleID, 0, len(header)-1)
	for _, cell := range header[1:] {
		samples = append(samples, core.SampleID(strings.TrimSpace(cell)))
	}

	counts := make(map[core.FeatureID][]int64, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		feature := core.FeatureID(strings.TrimSpace(row[0]))
		vec := make([]int64, len(samples))
		for j := range samples {
			// excelize drops trailing empty cells; treat them as zero
			if j+1 >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[j+1])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, errors.InvalidInput(fmt.Sprintf("feature %s has non-integer count %q for sample %s", feature, cell, samples[j]))
			}
			vec[j] = v
		}
		counts[feature] = vec
	}

	table, err := biom.NewAbundanceTable(samples, counts)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return table, nil
}

// readGroups reads the metadata sheet (sample_id, group columns) and aligns
// labels with the abundance table's sample order
func (r *TableReader) readGroups(f *excelize.File, samples []core.SampleID) (biom.GroupAssignment, error) {
	rows, err := f.GetRows(metadataSheet)
	if err != nil {
		return biom.GroupAssignment{}, errors.InvalidInput(fmt.Sprintf("failed to read %s sheet: %v", metadataSheet, err))
	}
	if len(rows) < 2 {
		return biom.GroupAssignment{}, errors.InvalidInput(fmt.Sprintf("%s sheet needs a header row and one row per sample", metadataSheet))
	}

	bySample := make(map[core.SampleID]string, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 2 {
			continue
		}
		id := core.SampleID(strings.TrimSpace(row[0]))
		label := strings.TrimSpace(row[1])
		if id == "" || label == "" {
			continue
		}
		bySample[id] = label
	}

	labels := make([]string, 0, len(samples))
	for _, s := range samples {
		label, ok := bySample[s]
		if !ok {
			return biom.GroupAssignment{}, errors.InvalidInput(fmt.Sprintf("sample %s has no group label in %s sheet", s, metadataSheet))
		}
		labels = append(labels, label)
	}

	groups, err := biom.NewGroupAssignment(labels, len(samples))
	if err != nil {
		return biom.GroupAssignment{}, errors.InvalidInput(err.Error())
	}
	return groups, nil
}
