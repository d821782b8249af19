package export_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fmanzoor3/tiq-assistant/engine"
	"github.com/fmanzoor3/tiq-assistant/export"
)

func exportEntry(day int, hours int, description string) engine.TimesheetEntry {
	return engine.TimesheetEntry{
		ID:           engine.EntryID(engine.NewID()),
		ConsultantID: "FMANZOOR",
		EntryDate:    engine.NewDate(2026, time.June, day),
		Hours:        hours,
		TicketNumber: "T-1001",
		ProjectName:  "Payroll Platform",
		Activity:     engine.ActivityMeeting,
		Location:     "ANKARA",
		Description:  description,
		Status:       engine.StatusApproved,
		Source:       engine.SourceCalendar,
	}
}

func cell(t *testing.T, f *excelize.File, ref string) string {
	t.Helper()
	v, err := f.GetCellValue("Timesheet", ref)
	require.NoError(t, err)
	return v
}

func TestWriter_MonthlyPath(t *testing.T) {
	w := export.NewWriter("/tmp/exports")
	assert.Equal(t, "/tmp/exports/Timesheet_June_2026.xlsx", w.MonthlyPath(2026, time.June))
}

func TestWriter_CreatesWorkbookWithHeader(t *testing.T) {
	// GIVEN: A fresh export directory
	// WHEN: Writing one entry
	// THEN: The file carries the header row and the entry in row 2

	w := export.NewWriter(t.TempDir())

	path, n, err := w.WriteMonthly(2026, time.June, []engine.TimesheetEntry{
		exportEntry(10, 2, "sprint planning"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Consultant ID", cell(t, f, "A1"))
	assert.Equal(t, "Activity", cell(t, f, "I1"))

	assert.Equal(t, "FMANZOOR", cell(t, f, "A2"))
	assert.Equal(t, "10.06.2026", cell(t, f, "B2"), "dates use the billing side's dotted format")
	assert.Equal(t, "2", cell(t, f, "C2"))
	assert.Equal(t, "T-1001", cell(t, f, "D2"))
	assert.Equal(t, "Payroll Platform", cell(t, f, "E2"))
	assert.Equal(t, "TPLNT", cell(t, f, "F2"))
	assert.Equal(t, "ANKARA", cell(t, f, "G2"))
	assert.Equal(t, "", cell(t, f, "H2"), "column H stays empty")
	assert.Equal(t, "sprint planning", cell(t, f, "I2"))
}

func TestWriter_AppendsToExistingWorkbook(t *testing.T) {
	w := export.NewWriter(t.TempDir())

	path, _, err := w.WriteMonthly(2026, time.June, []engine.TimesheetEntry{
		exportEntry(10, 2, "first"),
	})
	require.NoError(t, err)

	_, n, err := w.WriteMonthly(2026, time.June, []engine.TimesheetEntry{
		exportEntry(11, 3, "second"),
		exportEntry(12, 1, "third"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Timesheet")
	require.NoError(t, err)
	require.Len(t, rows, 4, "header plus three entries")
	assert.Equal(t, "first", cell(t, f, "I2"))
	assert.Equal(t, "second", cell(t, f, "I3"))
	assert.Equal(t, "third", cell(t, f, "I4"))
}

func TestWriter_NoEntriesWritesNothing(t *testing.T) {
	w := export.NewWriter(t.TempDir())

	path, n, err := w.WriteMonthly(2026, time.June, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "no file is created for an empty batch")
}
