package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gobiome/internal/errors"
)

func writeWorkbook(t *testing.T, abundance, metadata [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	writeSheet := func(sheet string, rows [][]interface{}) {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	writeSheet(abundanceSheet, abundance)
	writeSheet(metadataSheet, metadata)

	path := filepath.Join(t.TempDir(), "study.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadTable(t *testing.T) {
	path := writeWorkbook(t,
		[][]interface{}{
			{"feature", "s1", "s2", "s3"},
			{"ASV1", 100, 50, 75},
			{"ASV2", 200, 150, 180},
		},
		[][]interface{}{
			{"sample_id", "group"},
			{"s1", "treatment"},
			{"s2", "control"},
			{"s3", "treatment"},
		},
	)

	table, groups, err := NewTableReader(path).ReadTable(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, table.NumSamples())
	assert.Equal(t, 2, table.NumFeatures())
	row, ok := table.Row("ASV1")
	require.True(t, ok)
	assert.Equal(t, []int64{100, 50, 75}, row)
	assert.Equal(t, []string{"treatment", "control", "treatment"}, groups.Labels)
}

func TestReadTableMissingFile(t *testing.T) {
	_, _, err := NewTableReader(filepath.Join(t.TempDir(), "absent.xlsx")).ReadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReadTableNonIntegerCount(t *testing.T) {
	path := writeWorkbook(t,
		[][]interface{}{
			{"feature", "s1"},
			{"ASV1", "lots"},
		},
		[][]interface{}{
			{"sample_id", "group"},
			{"s1", "a"},
		},
	)
	_, _, err := NewTableReader(path).ReadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestReadTableUnlabeledSample(t *testing.T) {
	path := writeWorkbook(t,
		[][]interface{}{
			{"feature", "s1", "s2"},
			{"ASV1", 1, 2},
		},
		[][]interface{}{
			{"sample_id", "group"},
			{"s1", "a"},
		},
	)
	_, _, err := NewTableReader(path).ReadTable(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "s2")
}
