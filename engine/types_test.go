package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate(t *testing.T) {
	d, err := engine.ParseDate("2026-03-19")
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 19, d.Day())

	_, err = engine.ParseDate("19.03.2026")
	assert.ErrorIs(t, err, engine.ErrInvalidDate)

	_, err = engine.ParseDate("")
	assert.ErrorIs(t, err, engine.ErrInvalidDate)
}

func TestDate_Comparisons(t *testing.T) {
	a := engine.NewDate(2026, time.June, 10)
	b := engine.NewDate(2026, time.June, 11)

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.BeforeOrEqual(a))
	assert.True(t, a.Equal(engine.DateOf(time.Date(2026, time.June, 10, 17, 45, 0, 0, time.UTC))),
		"time of day is normalized away")
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 28, engine.DaysInMonth(2026, time.February))
	assert.Equal(t, 29, engine.DaysInMonth(2028, time.February))
	assert.Equal(t, 31, engine.DaysInMonth(2026, time.January))
	assert.Equal(t, 30, engine.DaysInMonth(2026, time.April))
}

func TestParseClock(t *testing.T) {
	c, err := engine.ParseClock("12:15")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Hour())
	assert.Equal(t, 15, c.Minute())
	assert.Equal(t, "12:15", c.String())

	_, err = engine.ParseClock("25:00")
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	_, err = engine.ParseClock("noon")
	assert.ErrorIs(t, err, engine.ErrConfiguration)
}

// =============================================================================
// STATUS LIFECYCLE TESTS
// =============================================================================

func TestTimesheetEntry_AdvanceForwardOnly(t *testing.T) {
	// GIVEN: A draft entry
	// WHEN: Advancing forward, then attempting to move back
	// THEN: Forward succeeds, backward is rejected

	now := time.Now()
	e := engine.TimesheetEntry{
		ID:           "e1",
		ConsultantID: "FMANZOOR",
		EntryDate:    engine.NewDate(2026, time.June, 10),
		Hours:        2,
		Activity:     engine.ActivityMeeting,
		Location:     "ANKARA",
		Description:  "sync",
		Status:       engine.StatusDraft,
		Source:       engine.SourceManual,
	}

	require.NoError(t, e.Advance(engine.StatusPendingReview, now))
	require.NoError(t, e.Advance(engine.StatusApproved, now))

	err := e.Advance(engine.StatusDraft, now)
	assert.ErrorIs(t, err, engine.ErrValidation)
	assert.Equal(t, engine.StatusApproved, e.Status)
}

func TestTimesheetEntry_ExportedAtSetOnce(t *testing.T) {
	// GIVEN: An approved entry
	// WHEN: Advancing to exported
	// THEN: ExportedAt is stamped exactly once

	first := time.Date(2026, time.June, 30, 18, 0, 0, 0, time.UTC)
	e := engine.TimesheetEntry{
		ID:           "e1",
		ConsultantID: "FMANZOOR",
		EntryDate:    engine.NewDate(2026, time.June, 10),
		Hours:        2,
		Activity:     engine.ActivityMeeting,
		Location:     "ANKARA",
		Description:  "sync",
		Status:       engine.StatusApproved,
		Source:       engine.SourceManual,
	}

	require.NoError(t, e.Advance(engine.StatusExported, first))
	require.NotNil(t, e.ExportedAt)
	assert.Equal(t, first, *e.ExportedAt)
}

func TestEntryStatus_CanAdvanceTo(t *testing.T) {
	assert.True(t, engine.StatusDraft.CanAdvanceTo(engine.StatusExported), "skipping ahead is allowed")
	assert.False(t, engine.StatusExported.CanAdvanceTo(engine.StatusDraft))
	assert.False(t, engine.StatusDraft.CanAdvanceTo(engine.StatusDraft), "no self-transition")
	assert.False(t, engine.StatusDraft.CanAdvanceTo(engine.EntryStatus("bogus")))
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestTimesheetEntry_Validate(t *testing.T) {
	valid := engine.TimesheetEntry{
		ID:           "e1",
		ConsultantID: "FMANZOOR",
		EntryDate:    engine.NewDate(2026, time.June, 10),
		Hours:        8,
		Activity:     engine.ActivityGeneral,
		Location:     "ANKARA",
		Description:  "work",
		Status:       engine.StatusDraft,
		Source:       engine.SourceManual,
	}
	assert.NoError(t, valid.Validate())

	tooMany := valid
	tooMany.Hours = 25
	assert.ErrorIs(t, tooMany.Validate(), engine.ErrValidation)

	zero := valid
	zero.Hours = 0
	assert.ErrorIs(t, zero.Validate(), engine.ErrValidation)
}

func TestProject_Validate(t *testing.T) {
	p := engine.NewProject("Payroll Platform", "T-1001")
	assert.NoError(t, p.Validate())

	missing := p
	missing.Name = ""
	assert.ErrorIs(t, missing.Validate(), engine.ErrValidation)
}

func TestNormalizeIssueKey(t *testing.T) {
	assert.Equal(t, "PEMP-948", engine.NormalizeIssueKey(" pemp-948 "))
	assert.Equal(t, "", engine.NormalizeIssueKey("  "))
}

// =============================================================================
// EVENT AND EXPORT TESTS
// =============================================================================

func TestCalendarEvent_TimesheetDescription(t *testing.T) {
	cases := map[string]string{
		"FW: budget review":       "budget review",
		"RE: budget review":       "budget review",
		"Canceled: budget review": "budget review",
		"budget review":           "budget review",
	}
	for subject, want := range cases {
		ev := engine.CalendarEvent{Subject: subject}
		assert.Equal(t, want, ev.TimesheetDescription())
	}
}

func TestTimesheetEntry_ExportRow(t *testing.T) {
	// GIVEN: A full entry
	// WHEN: Formatting for the spreadsheet
	// THEN: The date uses day.month.year and the spacer stays empty

	e := engine.TimesheetEntry{
		ConsultantID: "FMANZOOR",
		EntryDate:    engine.NewDate(2026, time.March, 5),
		Hours:        2,
		TicketNumber: "T-1001",
		ProjectName:  "Payroll Platform",
		Activity:     engine.ActivityMeeting,
		Location:     "ANKARA",
		Description:  "sprint planning",
	}

	row := e.ExportRow()
	assert.Equal(t, "05.03.2026", row.Date)
	assert.Equal(t, 2, row.Workhour)
	assert.Equal(t, "TPLNT", row.ActivityNo)
	assert.Empty(t, row.Spacer)
	assert.Equal(t, "sprint planning", row.Activity)
}

func TestMeeting_ToEvent(t *testing.T) {
	start := time.Date(2026, time.June, 10, 10, 0, 0, 0, time.UTC)
	m := engine.Meeting{
		ID:      "m1",
		Subject: "PEMP-948 sync",
		Start:   start,
		End:     start.Add(45 * time.Minute),
		Body:    "agenda",
	}

	ev := m.ToEvent()
	assert.Equal(t, engine.EventID("m1"), ev.ID)
	assert.Equal(t, 45, int(ev.Duration().Minutes()))
	assert.Equal(t, "agenda", ev.Description)
}
