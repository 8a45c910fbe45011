package xlsxparser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}

	for i, row := range rows {
		values := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}

	path := filepath.Join(t.TempDir(), "spenden.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func Test_ReadCells_FirstSheet(t *testing.T) {
	path := writeWorkbook(t, "Spenden 2024", [][]interface{}{
		{"# Nachname", "Vorname"},
		{"Schmidt", "Anna", "Hauptstr. 1", "", "12345 Berlin", "50,00", "15.03.2024"},
	})

	rows, err := ReadCells(path, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "# Nachname", rows[0][0].Value)
	assert.Equal(t, "Schmidt", rows[1][0].Value)
	assert.Equal(t, "50,00", rows[1][5].Value)
	assert.False(t, rows[1][5].Numeric)
	assert.Equal(t, "15.03.2024", rows[1][6].Value)
}

func Test_ReadCells_NumericCells(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"Schmidt", "Anna", "Hauptstr. 1", "", "12345 Berlin", 50.5, 45366},
		{"Schmidt", "Anna", "Hauptstr. 1", "", "12345 Berlin", "75.25", "15.03.2024"},
	})

	cells, err := ReadCells(path, "")
	require.NoError(t, err)
	require.Len(t, cells, 2)

	amount := cells[0][5]
	assert.True(t, amount.Numeric)
	assert.Equal(t, "50.5", amount.Raw)
	n, err := amount.Number()
	require.NoError(t, err)
	assert.Equal(t, "50.5", n.String())

	date, err := cells[0][6].Time()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), date)

	assert.False(t, cells[0][0].Numeric)
	assert.False(t, cells[1][5].Numeric, "text that looks like a number stays text")
	_, err = cells[1][5].Number()
	require.Error(t, err)
}

func Test_ReadCells_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{{"a"}})

	_, err := ReadCells(path, "missing")
	require.Error(t, err)
}

func Test_ReadCells_NotAWorkbook(t *testing.T) {
	_, err := ReadCells(filepath.Join(t.TempDir(), "absent.xlsx"), "")
	require.Error(t, err)
}
