package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func draftEntry(d engine.Date, project, ticket string, hours int, description string) engine.TimesheetEntry {
	return engine.TimesheetEntry{
		ID:           engine.EntryID(engine.NewID()),
		ConsultantID: "FMANZOOR",
		EntryDate:    d,
		Hours:        hours,
		TicketNumber: ticket,
		ProjectName:  project,
		Activity:     engine.ActivityMeeting,
		Location:     "ANKARA",
		Description:  description,
		Status:       engine.StatusDraft,
		Source:       engine.SourceCalendar,
	}
}

// =============================================================================
// AGGREGATION TESTS
// =============================================================================

func TestAggregate_MergesSameKey(t *testing.T) {
	// GIVEN: Two same-day entries for the same project and activity
	// WHEN: Aggregating
	// THEN: One entry with summed hours and joined descriptions

	d := engine.NewDate(2026, time.June, 10)
	entries := []engine.TimesheetEntry{
		draftEntry(d, "Payroll Platform", "T-1001", 1, "standup"),
		draftEntry(d, "Payroll Platform", "T-1001", 2, "coding"),
	}

	out := engine.Aggregate(entries)

	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].Hours)
	assert.Equal(t, "standup; coding", out[0].Description)
	assert.Equal(t, engine.StatusDraft, out[0].Status)
}

func TestAggregate_DifferentKeysStaySeparate(t *testing.T) {
	d := engine.NewDate(2026, time.June, 10)
	other := d.AddDays(1)

	entries := []engine.TimesheetEntry{
		draftEntry(d, "Payroll Platform", "T-1001", 1, "standup"),
		draftEntry(d, "Core Banking", "T-1002", 2, "review"),
		draftEntry(other, "Payroll Platform", "T-1001", 1, "standup"),
	}

	out := engine.Aggregate(entries)
	assert.Len(t, out, 3)
}

func TestAggregate_DifferentActivitySplits(t *testing.T) {
	d := engine.NewDate(2026, time.June, 10)

	a := draftEntry(d, "Payroll Platform", "T-1001", 1, "standup")
	b := draftEntry(d, "Payroll Platform", "T-1001", 2, "spike")
	b.Activity = engine.ActivityPOC

	out := engine.Aggregate([]engine.TimesheetEntry{a, b})
	assert.Len(t, out, 2)
}

func TestAggregate_SubstringDescriptionsDeduplicated(t *testing.T) {
	// GIVEN: A second description already contained in the first
	// WHEN: Aggregating
	// THEN: It is not appended again

	d := engine.NewDate(2026, time.June, 10)
	entries := []engine.TimesheetEntry{
		draftEntry(d, "Payroll Platform", "T-1001", 1, "sprint planning and grooming"),
		draftEntry(d, "Payroll Platform", "T-1001", 1, "planning"),
	}

	out := engine.Aggregate(entries)
	require.Len(t, out, 1)
	assert.Equal(t, "sprint planning and grooming", out[0].Description)
	assert.Equal(t, 2, out[0].Hours, "hours still sum even when text is absorbed")
}

func TestAggregate_HoursIdempotent(t *testing.T) {
	// GIVEN: An already-aggregated list
	// WHEN: Aggregating again
	// THEN: Hours are unchanged

	d := engine.NewDate(2026, time.June, 10)
	entries := []engine.TimesheetEntry{
		draftEntry(d, "Payroll Platform", "T-1001", 1, "standup"),
		draftEntry(d, "Payroll Platform", "T-1001", 2, "coding"),
		draftEntry(d, "Core Banking", "T-1002", 1, "review"),
	}

	once := engine.Aggregate(entries)
	twice := engine.Aggregate(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Hours, twice[i].Hours)
	}
}

func TestAggregate_FreshIdentity(t *testing.T) {
	// GIVEN: A single entry
	// WHEN: Aggregating
	// THEN: The output is a new logical entry, not the input

	d := engine.NewDate(2026, time.June, 10)
	in := draftEntry(d, "Payroll Platform", "T-1001", 1, "standup")
	in.Status = engine.StatusApproved

	out := engine.Aggregate([]engine.TimesheetEntry{in})
	require.Len(t, out, 1)
	assert.NotEqual(t, in.ID, out[0].ID)
	assert.Equal(t, engine.StatusDraft, out[0].Status)
}

func TestAggregate_PreservesFirstOccurrenceOrder(t *testing.T) {
	d := engine.NewDate(2026, time.June, 10)
	entries := []engine.TimesheetEntry{
		draftEntry(d, "Core Banking", "T-1002", 1, "review"),
		draftEntry(d, "Payroll Platform", "T-1001", 1, "standup"),
		draftEntry(d, "Core Banking", "T-1002", 1, "retro"),
	}

	out := engine.Aggregate(entries)
	require.Len(t, out, 2)
	assert.Equal(t, "Core Banking", out[0].ProjectName)
	assert.Equal(t, "Payroll Platform", out[1].ProjectName)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, engine.Aggregate(nil))
}
