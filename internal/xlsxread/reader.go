package xlsxread

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/denialstats/internal/model"
)

// headerRowIndex is the zero-based row holding the column headers.
// Row 0 of these exports is a report banner.
const headerRowIndex = 1

// Table holds all denial rows parsed from one workbook.
type Table struct {
	SourceFile string
	Rows       []model.DenialRow
}

// ReadFile opens a workbook on disk and parses its first sheet.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// Read parses the first sheet of a workbook from r. name identifies the
// source in parsed rows and error messages.
func Read(r io.Reader, name string) (*Table, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", name, err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", sheet, name, err)
	}
	if len(rows) <= headerRowIndex {
		return nil, fmt.Errorf("workbook %s: no header row at index %d", name, headerRowIndex)
	}

	cols, err := ValidateHeader(rows[headerRowIndex])
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", name, err)
	}

	t := &Table{SourceFile: name}
	for i, row := range rows[headerRowIndex+1:] {
		t.Rows = append(t.Rows, model.DenialRow{
			SourceFile:      name,
			SourceRowNumber: int64(i + 1),
			RawCodes:        cell(row, cols[ColReasonCodes]),
			RawDescriptions: cell(row, cols[ColReasonCodeDescriptions]),
			VisitID:         cell(row, cols[ColVisit]),
		})
	}
	return t, nil
}

// cell returns the value at idx, tolerating the short rows excelize
// produces when trailing cells are empty.
func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
