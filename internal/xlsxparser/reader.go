// =============================================================================
// Donation Receipts - XLSX Ledger Reader
// =============================================================================
//
// Some treasurers keep the donation ledger in a spreadsheet instead of a text
// export. This module reads the first worksheet of an XLSX workbook and hands
// the raw rows to the ledger parser, which applies the same padding, trimming
// and comment rules as for text ledgers.
//
// EXPECTED LAYOUT:
//   | A        | B       | C       | D            | E        | F      | G            |
//   |----------|---------|---------|--------------|----------|--------|--------------|
//   | Nachname | Vorname | Straße  | Adresszusatz | PLZ Ort  | Betrag | Spendendatum |
//
//   A header row is allowed if it starts with '#', like a comment row in the
//   text format.
//
// NUMERIC CELLS:
//   Cells typed as numbers are reported with their stored value, which uses
//   '.' as the decimal point regardless of the display format. The ledger
//   parser rewrites them to the text ledger convention.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Cell is one worksheet cell.
type Cell struct {
	// Value is the text as the spreadsheet displays it.
	Value string

	// Raw is the stored value. Numbers use '.' as the decimal point and
	// dates are serial day numbers.
	Raw string

	// Numeric is true when the cell stores a number rather than text.
	Numeric bool
}

// Number returns the exact stored value of a numeric cell.
func (c Cell) Number() (decimal.Decimal, error) {
	if !c.Numeric {
		return decimal.Zero, fmt.Errorf("cell %q is not numeric", c.Value)
	}
	return decimal.NewFromString(c.Raw)
}

// Time converts a numeric cell holding a date serial (1900 date system).
func (c Cell) Time() (time.Time, error) {
	n, err := c.Number()
	if err != nil {
		return time.Time{}, err
	}
	serial, _ := n.Float64()
	return excelize.ExcelDateToTime(serial, false)
}

// ReadCells returns all cells of the named worksheet with their stored
// values and types. An empty sheet name selects the first worksheet.
func ReadCells(path, sheet string) ([][]Cell, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, fmt.Errorf("workbook has no sheets")
		}
	}

	values, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %q: %w", sheet, err)
	}
	raws, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows from sheet %q: %w", sheet, err)
	}

	cells := make([][]Cell, len(values))
	for i, row := range values {
		cells[i] = make([]Cell, len(row))
		for j, value := range row {
			cell := Cell{Value: value, Raw: value}
			if i < len(raws) && j < len(raws[i]) {
				cell.Raw = raws[i][j]
			}

			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			cellType, err := f.GetCellType(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("failed to read type of %s: %w", name, err)
			}

			// Numbers are stored without a type or with "n"; text is a
			// shared or inline string.
			cell.Numeric = cell.Raw != "" &&
				(cellType == excelize.CellTypeNumber || cellType == excelize.CellTypeUnset)

			cells[i][j] = cell
		}
	}

	return cells, nil
}
