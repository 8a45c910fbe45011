// =============================================================================
// Donation Receipts - Ledger Parser
// =============================================================================
//
// This module reads the donation ledger into DonationRecords. The ledger is a
// semicolon separated text file with seven logical columns:
//
//   Nachname;Vorname;Straße;Adresszusatz;PLZ Ort;Betrag;Spendendatum
//
// PARSING RULES:
//   - Blank rows and rows whose first field starts with '#' are skipped
//   - Rows are padded or truncated to exactly seven fields, so ledgers written
//     before the address supplement column existed still parse
//   - Every field is trimmed
//   - Dates are parsed best-effort; amounts are left raw for the normalizer
//
// =============================================================================

package ledger

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
	"github.com/ginjaninja78/donation-receipts/internal/types"
	"github.com/ginjaninja78/donation-receipts/internal/xlsxparser"
)

// Column positions of the fields that spreadsheets may store as numbers.
const (
	amountColumn = 5
	dateColumn   = 6
)

// sheetDateLayout renders spreadsheet date serials. ParseDate accepts it.
const sheetDateLayout = "02.01.2006"

// CommentMarker starts a comment row when it prefixes the first field.
const CommentMarker = "#"

// DateLayouts are tried in order; the first successful match wins.
// Day and month accept one or two digits.
var DateLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2006-01-02",
}

// ErrEmptyLedger is returned by ParseFile when a ledger holds no records.
var ErrEmptyLedger = errors.New("ledger contains no donation records")

// Options configures the parser.
type Options struct {
	// Delimiter separates the fields. Default: ';'
	Delimiter rune

	// Logger receives a warning for every unparseable donation date.
	Logger zerolog.Logger
}

// DefaultOptions returns the options used for the standard ledger format.
func DefaultOptions() Options {
	return Options{
		Delimiter: ';',
		Logger:    zerolog.Nop(),
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads a ledger from disk. Files ending in .xlsx are read from the
// first worksheet; everything else is treated as delimited text.
func ParseFile(path string, opts Options) ([]types.DonationRecord, error) {
	var (
		records []types.DonationRecord
		err     error
	)

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		var cells [][]xlsxparser.Cell
		cells, err = xlsxparser.ReadCells(path, "")
		if err != nil {
			return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
		}
		records = FromRows(SheetRows(cells), opts)
	} else {
		var file *os.File
		file, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
		defer file.Close()

		records, err = Parse(bufio.NewReader(file), opts)
		if err != nil {
			return nil, err
		}
	}

	if len(records) == 0 {
		return nil, ErrEmptyLedger
	}

	return records, nil
}

// Parse reads delimited rows from r.
func Parse(r io.Reader, opts Options) ([]types.DonationRecord, error) {
	reader := csv.NewReader(r)
	configureReader(reader, opts)

	var (
		rows  [][]string
		lines []int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger: %w", err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}

	return fromRows(rows, lines, opts), nil
}

// FromRows converts raw rows (from any source) into records.
// Row numbers are the 1-based slice positions.
func FromRows(rows [][]string, opts Options) []types.DonationRecord {
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return fromRows(rows, lines, opts)
}

func fromRows(rows [][]string, lines []int, opts Options) []types.DonationRecord {
	records := make([]types.DonationRecord, 0, len(rows))

	for i, row := range rows {
		if skipRow(row) {
			continue
		}

		record := NewRecord(row)
		record.Line = lines[i]

		if record.DonationDate != "" && !record.HasDate() {
			opts.Logger.Warn().
				Int("line", record.Line).
				Str("date", record.DonationDate).
				Msg("unparseable donation date, treating as undated")
		}

		records = append(records, record)
	}

	return records
}

// SheetRows converts worksheet cells to ledger rows. Numeric amounts are
// written with a decimal comma and two places ("50.5" -> "50,50") and date
// serials as DD.MM.YYYY, so both follow the same rules as text ledgers.
// Every other cell keeps its displayed text.
func SheetRows(cells [][]xlsxparser.Cell) [][]string {
	rows := make([][]string, len(cells))
	for i, row := range cells {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = sheetValue(j, cell)
		}
	}
	return rows
}

func sheetValue(column int, cell xlsxparser.Cell) string {
	if !cell.Numeric {
		return cell.Value
	}

	switch column {
	case amountColumn:
		if n, err := cell.Number(); err == nil {
			return amount.Format(n)
		}
	case dateColumn:
		if t, err := cell.Time(); err == nil {
			return t.Format(sheetDateLayout)
		}
	}

	return cell.Value
}

// NewRecord normalizes one row to seven trimmed fields and builds a record.
func NewRecord(row []string) types.DonationRecord {
	fields := NormalizeRow(row)

	return types.DonationRecord{
		LastName:     fields[0],
		FirstName:    fields[1],
		Street:       fields[2],
		AddressExtra: fields[3],
		City:         fields[4],
		Amount:       fields[5],
		DonationDate: fields[6],
		Date:         ParseDate(fields[6]),
	}
}

// NormalizeRow pads or truncates row to FieldCount fields and trims each one.
func NormalizeRow(row []string) []string {
	fields := make([]string, types.FieldCount)
	for i := 0; i < types.FieldCount && i < len(row); i++ {
		fields[i] = strings.TrimSpace(row[i])
	}
	return fields
}

// ParseDate tries every layout in DateLayouts. It returns nil when none match.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}

	return nil
}

// configureReader sets up the CSV reader for the ledger format.
func configureReader(reader *csv.Reader, opts Options) {
	reader.Comma = opts.Delimiter
	if reader.Comma == 0 {
		reader.Comma = ';'
	}

	// Rows have a variable number of fields; padding happens in NormalizeRow.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
}

// skipRow reports whether a row is blank or a comment.
func skipRow(row []string) bool {
	if len(row) == 0 {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(row[0]), CommentMarker) {
		return true
	}
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
