// Package sheet loads tabular spreadsheet deliveries into memory for
// profiling and reconciliation. XLSX workbooks are read through excelize;
// plain CSV exports go through encoding/csv. The loaded Sheet is treated as
// immutable by every downstream stage.
package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\xEF\xBB\xBF"

// Options control how a delivery file is read.
type Options struct {
	// HeaderRow is the 1-based row carrying the column names. Rows above it
	// are discarded (the reference workbook carries three banner rows, so its
	// header sits at row 4). Zero means row 1.
	HeaderRow int

	// SheetName selects a worksheet by name for XLSX input. Empty means the
	// first worksheet.
	SheetName string

	// Delimiter overrides the CSV field separator. Zero means ','.
	Delimiter rune
}

// Sheet is one loaded delivery: a single header row plus data rows. Data rows
// may be ragged (shorter or longer than the header); consumers index
// defensively.
type Sheet struct {
	Path    string
	Headers []string
	Rows    [][]string
}

// Open reads the file at path. The format is chosen by extension: .xlsx and
// .xlsm go through excelize, everything else is parsed as CSV.
func Open(path string, opt Options) (*Sheet, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return openXLSX(path, opt)
	default:
		return openCSV(path, opt)
	}
}

func openXLSX(path string, opt Options) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name := opt.SheetName
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, fmt.Errorf("workbook %s has no worksheets", path)
		}
		name = list[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}
	return fromRows(path, rows, opt.HeaderRow)
}

func openCSV(path string, opt Options) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // width is enforced later, against the header
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return fromRows(path, records, opt.HeaderRow)
}

// fromRows splits raw rows into header and data at the configured header row.
// Trailing content of the header is trimmed cell-wise; excelize in particular
// drops trailing empty cells, so data rows are left ragged rather than padded.
func fromRows(path string, rows [][]string, headerRow int) (*Sheet, error) {
	if headerRow <= 0 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		// No header row at all; the profiler turns this into its own error.
		return &Sheet{Path: path}, nil
	}

	headers := stripHeaderBOM(rows[headerRow-1])
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	return &Sheet{
		Path:    path,
		Headers: headers,
		Rows:    rows[headerRow:],
	}, nil
}

// Cell returns the value at column idx of row, or "" when the row is shorter.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// stripHeaderBOM removes a UTF-8 BOM from the first header cell if present.
func stripHeaderBOM(headers []string) []string {
	if len(headers) > 0 && strings.HasPrefix(headers[0], utf8BOM) {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	return headers
}
