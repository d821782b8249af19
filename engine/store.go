/*
store.go - Collaborator interfaces

PURPOSE:
  Defines the boundary between the engine and its external
  collaborators: the keyed persistence store and the calendar reader.
  The engine treats their inputs as already validated; their I/O
  failures are their own concern and surface here only as wrapped
  ErrUpstreamUnavailable values when a call is made directly within a
  reconciliation run.

IMPLEMENTATIONS:
  - store/sqlite:      production SQLite store
  - engine/store:      in-memory store for tests and dev mode
  - outlook:           MS Graph calendar reader

SEE ALSO:
  - errors.go: UpstreamError
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// PERSISTENCE COLLABORATOR
// =============================================================================

// ProjectStore persists the tracked project set. Projects are
// soft-deleted: DeleteProject flags them inactive, never removes them.
type ProjectStore interface {
	SaveProject(ctx context.Context, p Project) error
	GetProject(ctx context.Context, id ProjectID) (Project, error)
	GetProjects(ctx context.Context, activeOnly bool) ([]Project, error)
	DeleteProject(ctx context.Context, id ProjectID) error
	FindProjectByIssueKey(ctx context.Context, key string) (Project, bool, error)
}

// EntryFilter narrows GetEntries. Nil fields match everything.
type EntryFilter struct {
	From   *Date
	To     *Date
	Status *EntryStatus
}

// EntryStore persists timesheet entries.
type EntryStore interface {
	SaveEntry(ctx context.Context, e TimesheetEntry) error
	GetEntry(ctx context.Context, id EntryID) (TimesheetEntry, error)
	GetEntries(ctx context.Context, filter EntryFilter) ([]TimesheetEntry, error)
	DeleteEntry(ctx context.Context, id EntryID) error
	MarkEntriesExported(ctx context.Context, ids []EntryID, at time.Time) error
}

// MeetingStore caches fetched meetings and their imported markers.
type MeetingStore interface {
	SaveMeeting(ctx context.Context, m Meeting) error
	GetMeeting(ctx context.Context, id MeetingID) (Meeting, error)
	GetMeetingsForDate(ctx context.Context, d Date) ([]Meeting, error)
	MarkMeetingImported(ctx context.Context, id MeetingID, entryID EntryID) error
	ClearOldMeetings(ctx context.Context, before time.Time) (int, error)
}

// HolidayStore persists the operator-loaded holiday table.
type HolidayStore interface {
	// SaveHolidaysBatch upserts the batch (last write wins per date) and
	// returns the number of records written.
	SaveHolidaysBatch(ctx context.Context, holidays []Holiday, sourceTag string) (int, error)
	// GetHolidays returns holidays ascending by date; year 0 means all.
	GetHolidays(ctx context.Context, year int) ([]Holiday, error)
	// ClearAllHolidays drops every record and returns the count deleted.
	ClearAllHolidays(ctx context.Context) (int, error)
}

// SettingsStore persists the operator settings, schedule, and the
// recent-project quick-pick history.
type SettingsStore interface {
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, s Settings) error
	GetScheduleConfig(ctx context.Context) (ScheduleConfig, error)
	SaveScheduleConfig(ctx context.Context, c ScheduleConfig) error
	GetRecentProjects(ctx context.Context, limit int) ([]RecentProject, error)
	TouchRecentProject(ctx context.Context, p Project) error
}

// Store is the full persistence collaborator.
type Store interface {
	ProjectStore
	EntryStore
	MeetingStore
	HolidayStore
	SettingsStore
}

// =============================================================================
// CALENDAR-READING COLLABORATOR
// =============================================================================

// CalendarSource reads raw meetings from the operator's calendar.
// Availability is an explicit probe, never a throw on first use.
type CalendarSource interface {
	Available(ctx context.Context) bool
	GetMeetingsForRange(ctx context.Context, from, to Date) ([]Meeting, error)
}
