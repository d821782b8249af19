/*
Package export writes timesheet entries to the spreadsheet template
that the billing side expects.

PURPOSE:
  Renders approved entries as xlsx rows in a fixed nine-column layout
  (eight data columns plus an empty spacer). Supports creating a fresh
  monthly file and appending to an existing one.

FILE NAMING:
  Monthly files are named "Timesheet_<Month>_<Year>.xlsx" under the
  configured export directory.

SEE ALSO:
  - engine/types.go: ExportRow layout
  - cmd: the export command
*/
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

const sheetName = "Timesheet"

var headerRow = []string{
	"Consultant ID",
	"Date",
	"Workhour",
	"Ticket No",
	"Project",
	"Activity No",
	"Location",
	"",
	"Activity",
}

// Writer renders entries into xlsx files.
type Writer struct {
	dir string
}

// NewWriter builds a Writer that places files under dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// MonthlyPath returns the canonical file path for the given month.
func (w *Writer) MonthlyPath(year int, month time.Month) string {
	return filepath.Join(w.dir, fmt.Sprintf("Timesheet_%s_%d.xlsx", month.String(), year))
}

// Write creates or appends to the file at path. When the file exists,
// new rows are appended after the last populated row; otherwise a
// fresh workbook with the header row is created. Returns the number of
// rows written.
func (w *Writer) Write(path string, entries []engine.TimesheetEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating export directory: %w", err)
	}

	f, startRow, err := openOrCreate(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	for i, e := range entries {
		if err := writeRow(f, startRow+i, e.ExportRow()); err != nil {
			return 0, err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("saving workbook: %w", err)
	}
	return len(entries), nil
}

// WriteMonthly writes entries into the canonical monthly file and
// returns its path.
func (w *Writer) WriteMonthly(year int, month time.Month, entries []engine.TimesheetEntry) (string, int, error) {
	path := w.MonthlyPath(year, month)
	n, err := w.Write(path, entries)
	return path, n, err
}

// openOrCreate opens an existing workbook and finds the first free
// row, or builds a new one with the header.
func openOrCreate(path string) (*excelize.File, int, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, 0, fmt.Errorf("opening workbook: %w", err)
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			f.Close()
			return nil, 0, fmt.Errorf("reading sheet: %w", err)
		}
		return f, len(rows) + 1, nil
	}

	f := excelize.NewFile()
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, 0, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	for col, title := range headerRow {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, 0, err
		}
		_ = f.SetCellStyle(sheetName, cell, cell, style)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 14)
	_ = f.SetColWidth(sheetName, "B", "B", 12)
	_ = f.SetColWidth(sheetName, "D", "E", 18)
	_ = f.SetColWidth(sheetName, "I", "I", 50)

	return f, 2, nil
}

func writeRow(f *excelize.File, row int, r engine.ExportRow) error {
	values := []any{
		r.ConsultantID,
		r.Date,
		r.Workhour,
		r.TicketNo,
		r.Project,
		r.ActivityNo,
		r.Location,
		r.Spacer,
		r.Activity,
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("writing cell %s: %w", cell, err)
		}
	}
	return nil
}
