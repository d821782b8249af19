/*
pipeline.go - Calendar events to draft timesheet entries

PURPOSE:
  Pipeline orchestrates matching and entry construction: each event is
  matched against the project set, filtered by the minimum-duration
  rule, and converted into a draft entry with bounded integer hours and
  a back-reference to its source event.

STATELESSNESS:
  The pipeline trusts its input list. Idempotence over already-imported
  meetings is the caller's responsibility: check the imported flag
  before handing a meeting's event to GenerateEntries.

FAILURE SEMANTICS:
  A malformed event is skipped with a recorded warning; it never aborts
  the rest of the batch.
*/
package engine

import (
	"time"
)

// Warning records why an individual event was skipped.
type Warning struct {
	EventID EventID
	Reason  string
}

// Pipeline turns batches of calendar events into draft timesheet entries.
type Pipeline struct {
	Matcher *EventMatcher
}

// NewPipeline creates a pipeline over the given matcher.
func NewPipeline(matcher *EventMatcher) *Pipeline {
	return &Pipeline{Matcher: matcher}
}

// GenerateEntries converts events into draft entries. Events below the
// minimum duration (and, when configured, canceled events) are filtered
// silently; malformed events are skipped with a warning.
func (p *Pipeline) GenerateEntries(events []CalendarEvent, settings Settings) ([]TimesheetEntry, []Warning) {
	var entries []TimesheetEntry
	var warnings []Warning

	for _, ev := range events {
		if ev.Start.IsZero() || ev.End.Before(ev.Start) {
			warnings = append(warnings, Warning{EventID: ev.ID, Reason: "unparseable start/end"})
			continue
		}
		if settings.SkipCanceledMeetings && ev.Canceled {
			continue
		}

		match := p.Matcher.MatchEvent(ev)

		minMinutes := float64(settings.MinMeetingDurationMinutes)
		if ev.Duration().Minutes() < minMinutes {
			continue
		}

		entry := p.buildEntry(ev, match, settings)
		if err := entry.Validate(); err != nil {
			warnings = append(warnings, Warning{EventID: ev.ID, Reason: err.Error()})
			continue
		}
		entries = append(entries, entry)
	}

	return entries, warnings
}

// buildEntry constructs the draft entry for one matched event. Calendar
// entries always use the meeting activity code; the matched project's own
// default activity applies to manual entries only.
func (p *Pipeline) buildEntry(ev CalendarEvent, match MatchResult, settings Settings) TimesheetEntry {
	now := time.Now()
	entry := TimesheetEntry{
		ID:            EntryID(NewID()),
		ConsultantID:  settings.ConsultantID,
		EntryDate:     ev.Date(),
		Hours:         RoundHours(ev.DurationHours()),
		Activity:      settings.MeetingActivity,
		Location:      settings.DefaultLocation,
		Description:   ev.TimesheetDescription(),
		Status:        StatusDraft,
		Source:        SourceCalendar,
		SourceEventID: ev.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// A match below the confidence floor is treated as no match at all;
	// the entry still comes out, just without a project snapshot.
	if match.Matched() && match.Confidence >= settings.MinMatchConfidence {
		entry.ProjectName = match.ProjectName
		entry.TicketNumber = match.TicketNumber
		entry.SourceIssueKey = match.IssueKey
	}
	return entry
}

// NewManualEntry builds a draft entry entered by the operator. Unlike
// calendar entries it takes the project's default activity and location
// when no override is given.
func NewManualEntry(d Date, hours int, description string, project *Project, settings Settings) (TimesheetEntry, error) {
	now := time.Now()
	entry := TimesheetEntry{
		ID:           EntryID(NewID()),
		ConsultantID: settings.ConsultantID,
		EntryDate:    d,
		Hours:        hours,
		Activity:     settings.DefaultActivity,
		Location:     settings.DefaultLocation,
		Description:  description,
		Status:       StatusDraft,
		Source:       SourceManual,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if project != nil {
		entry.ProjectName = project.Name
		entry.TicketNumber = project.TicketNumber
		entry.SourceIssueKey = project.IssueKey
		if project.DefaultActivity.Valid() {
			entry.Activity = project.DefaultActivity
		}
		if project.DefaultLocation != "" {
			entry.Location = project.DefaultLocation
		}
	}
	if err := entry.Validate(); err != nil {
		return TimesheetEntry{}, err
	}
	return entry, nil
}
