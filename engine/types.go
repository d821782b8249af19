/*
Package engine provides the timesheet reconciliation engine.

PURPOSE:
  This package contains the domain types and algorithms for turning raw
  calendar activity into bounded-hour timesheet entries. It knows how to
  classify dates against a holiday table, match free-text events to
  tracked projects, track morning/afternoon session quotas, and merge
  same-day entries into single rows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Project: A tracked project with its mandatory ticket number
  - CalendarEvent / Meeting: Raw calendar records and the cached form
  - TimesheetEntry: One exportable row with integer hours in [1, 24]
  - MatchResult: The outcome of matching an event against the projects
  - Settings / ScheduleConfig: Caller-supplied behavior knobs

DESIGN PRINCIPLES:
  1. Dependency injection: no package-level singletons; calendars,
     matchers and trackers are owned values passed in by the caller
  2. Denormalized snapshots: entries copy project name and ticket at
     creation time so they survive project deactivation
  3. Closed enums: activity codes and entry statuses are finite sets,
     illegal values are rejected at validation time
  4. Precision: meeting durations use decimal.Decimal, never float math

SEE ALSO:
  - calendar.go: Workday classification and expected hours
  - matcher.go:  Event-to-project matching
  - quota.go:    Session quota tracking and hour suggestions
  - pipeline.go: Event-to-entry generation
  - aggregate.go: Same-day entry compaction
*/
package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProjectID string
type EntryID string
type EventID string
type MeetingID string

// NewID generates a fresh opaque identifier.
func NewID() string { return uuid.NewString() }

// =============================================================================
// CLOSED ENUMS - activity, status, source, session
// =============================================================================

// ActivityCode is the closed set of timesheet activity codes.
type ActivityCode string

const (
	ActivityGeneral ActivityCode = "GLST"  // General work/development
	ActivityMeeting ActivityCode = "TPLNT" // Meetings (Toplantı)
	ActivityLeave   ActivityCode = "IZIN"  // Leave (İzin)
	ActivityHoliday ActivityCode = "TATIL" // Holiday (Tatil)
	ActivityPOC     ActivityCode = "POC"   // Proof of concept
)

// Valid reports whether the code is one of the known activity codes.
func (a ActivityCode) Valid() bool {
	switch a {
	case ActivityGeneral, ActivityMeeting, ActivityLeave, ActivityHoliday, ActivityPOC:
		return true
	}
	return false
}

// EntryStatus is the lifecycle state of a timesheet entry.
// Transitions are forward-only: draft -> pending_review -> approved -> exported.
type EntryStatus string

const (
	StatusDraft         EntryStatus = "draft"
	StatusPendingReview EntryStatus = "pending_review"
	StatusApproved      EntryStatus = "approved"
	StatusExported      EntryStatus = "exported"
)

func (s EntryStatus) Valid() bool {
	return s.rank() >= 0
}

func (s EntryStatus) rank() int {
	switch s {
	case StatusDraft:
		return 0
	case StatusPendingReview:
		return 1
	case StatusApproved:
		return 2
	case StatusExported:
		return 3
	}
	return -1
}

// CanAdvanceTo reports whether next is a legal forward transition.
func (s EntryStatus) CanAdvanceTo(next EntryStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// EntrySource records where an entry came from.
type EntrySource string

const (
	SourceManual   EntrySource = "manual"
	SourceCalendar EntrySource = "calendar"
)

// Session is a half-day time entry window.
type Session string

const (
	SessionMorning   Session = "morning"
	SessionAfternoon Session = "afternoon"
)

// MatchSource tags how a match was found, in decreasing order of trust.
type MatchSource string

const (
	MatchByJiraKey        MatchSource = "jira_key"
	MatchByDescriptionURL MatchSource = "description_url"
	MatchByDescription    MatchSource = "description"
	MatchByKeyword        MatchSource = "keyword"
	MatchNone             MatchSource = "none"
)

// HolidayType distinguishes full holidays (0 expected hours) from
// half-day holidays (4 expected hours).
type HolidayType string

const (
	HolidayFullDay HolidayType = "full_day"
	HolidayHalfDay HolidayType = "half_day"
)

// =============================================================================
// PROJECT
// =============================================================================

// Project is a tracked project with its required numeric ticket number.
// Projects are soft-deleted (Active=false), never removed, so entries that
// reference them by denormalized name/ticket keep their history.
type Project struct {
	ID              ProjectID
	Name            string
	TicketNumber    string // mandatory numeric identifier, immutable once set
	IssueKey        string // optional external key, e.g. "PEMP-948"; "" = absent
	Keywords        []string
	DefaultActivity ActivityCode
	DefaultLocation string
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProject creates an active project with a fresh ID.
func NewProject(name, ticketNumber string) Project {
	now := time.Now()
	return Project{
		ID:              ProjectID(NewID()),
		Name:            name,
		TicketNumber:    ticketNumber,
		DefaultActivity: ActivityGeneral,
		DefaultLocation: "ANKARA",
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NormalizeIssueKey trims and uppercases an issue key. Empty means absent.
func NormalizeIssueKey(key string) string {
	return strings.ToUpper(strings.TrimSpace(key))
}

// Validate checks the project's required fields.
func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "project name is required"}
	}
	if strings.TrimSpace(p.TicketNumber) == "" {
		return &ValidationError{Field: "ticket_number", Message: "ticket number is required"}
	}
	if !p.DefaultActivity.Valid() {
		return &ValidationError{Field: "default_activity_code", Message: "unknown activity code"}
	}
	return nil
}

// =============================================================================
// CALENDAR EVENT - one raw record handed in by the calendar collaborator
// =============================================================================

// CalendarEvent is a raw calendar record. Match fields are filled by the
// EventMatcher; matching returns annotated copies, it never mutates the
// caller's slice.
type CalendarEvent struct {
	ID          EventID
	Subject     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Canceled    bool
	Organizer   string
	Location    string
	Description string

	// Match results
	MatchedProjectID ProjectID
	MatchedIssueKey  string
	MatchConfidence  float64
	MatchSource      MatchSource
}

// Duration is always derived from the start/end pair and never negative.
func (e CalendarEvent) Duration() time.Duration {
	d := e.End.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// DurationHours returns the event length in decimal hours.
func (e CalendarEvent) DurationHours() decimal.Decimal {
	return decimal.NewFromFloat(e.Duration().Minutes()).Div(decimal.NewFromInt(60))
}

// Date returns the civil date of the event start.
func (e CalendarEvent) Date() Date { return DateOf(e.Start) }

// descriptionPrefixes are noise Outlook puts in front of subjects.
var descriptionPrefixes = []string{"FW: ", "RE: ", "Canceled: "}

// TimesheetDescription cleans the subject up for use as an entry description.
func (e CalendarEvent) TimesheetDescription() string {
	desc := e.Subject
	for _, prefix := range descriptionPrefixes {
		desc = strings.TrimPrefix(desc, prefix)
	}
	return desc
}

// =============================================================================
// MEETING - cached calendar record with the imported idempotence marker
// =============================================================================

// Meeting is a fetched calendar record persisted as a cache. Imported is
// the idempotence marker: once an entry has been created from a meeting,
// re-running generation must not produce a duplicate.
type Meeting struct {
	ID           MeetingID
	Subject      string
	Start        time.Time
	End          time.Time
	TeamsMeeting bool
	Recurring    bool
	Organizer    string
	Location     string
	Body         string

	MatchedProjectID ProjectID
	MatchedIssueKey  string
	MatchConfidence  float64

	Imported        bool
	ImportedEntryID EntryID
	FetchedAt       time.Time
}

// DurationMinutes returns the meeting length in whole minutes.
func (m Meeting) DurationMinutes() int {
	d := m.End.Sub(m.Start)
	if d < 0 {
		return 0
	}
	return int(d.Minutes())
}

// DurationHours returns the meeting length in decimal hours.
func (m Meeting) DurationHours() decimal.Decimal {
	return decimal.NewFromInt(int64(m.DurationMinutes())).Div(decimal.NewFromInt(60))
}

// ToEvent converts the cached meeting into a CalendarEvent for the pipeline.
func (m Meeting) ToEvent() CalendarEvent {
	return CalendarEvent{
		ID:          EventID(m.ID),
		Subject:     m.Subject,
		Start:       m.Start,
		End:         m.End,
		Canceled:    false,
		Organizer:   m.Organizer,
		Location:    m.Location,
		Description: m.Body,
	}
}

// =============================================================================
// TIMESHEET ENTRY
// =============================================================================

// TimesheetEntry is one exportable timesheet row. ProjectName and
// TicketNumber are denormalized snapshots taken at creation time; they are
// intentionally independent of the live project record.
type TimesheetEntry struct {
	ID           EntryID
	ConsultantID string
	EntryDate    Date
	Hours        int // integer hours in [1, 24]
	TicketNumber string
	ProjectName  string
	Activity     ActivityCode
	Location     string
	Description  string

	Status EntryStatus
	Source EntrySource

	SourceEventID  EventID
	SourceIssueKey string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ExportedAt *time.Time
}

// Validate checks the entry invariants.
func (e TimesheetEntry) Validate() error {
	if e.Hours < 1 {
		return &ValidationError{Field: "hours", Message: "hours must be at least 1"}
	}
	if e.Hours > 24 {
		return &ValidationError{Field: "hours", Message: "hours cannot exceed 24"}
	}
	if !e.Activity.Valid() {
		return &ValidationError{Field: "activity_code", Message: "unknown activity code"}
	}
	if !e.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown entry status"}
	}
	return nil
}

// Advance moves the entry status forward. Backward transitions are
// rejected, and ExportedAt is set exactly once, at the transition into
// exported.
func (e *TimesheetEntry) Advance(next EntryStatus, now time.Time) error {
	if !e.Status.CanAdvanceTo(next) {
		return &ValidationError{
			Field:   "status",
			Message: "status can only advance forward (" + string(e.Status) + " -> " + string(next) + ")",
		}
	}
	e.Status = next
	e.UpdatedAt = now
	if next == StatusExported && e.ExportedAt == nil {
		t := now
		e.ExportedAt = &t
	}
	return nil
}

// ExportRow is the fixed external spreadsheet layout: eight data columns
// plus one intentionally empty spacer column.
type ExportRow struct {
	ConsultantID string
	Date         string // day.month.year
	Workhour     int
	TicketNo     string
	Project      string
	ActivityNo   string
	Location     string
	Spacer       string // always empty
	Activity     string
}

// ExportRow formats the entry for the spreadsheet template.
func (e TimesheetEntry) ExportRow() ExportRow {
	return ExportRow{
		ConsultantID: e.ConsultantID,
		Date:         e.EntryDate.Time().Format("02.01.2006"),
		Workhour:     e.Hours,
		TicketNo:     e.TicketNumber,
		Project:      e.ProjectName,
		ActivityNo:   string(e.Activity),
		Location:     e.Location,
		Spacer:       "",
		Activity:     e.Description,
	}
}

// =============================================================================
// MATCH RESULT - ephemeral, produced fresh on every match call
// =============================================================================

// MatchResult is the outcome of matching one event against the project
// set. It is never persisted standalone and never cached across project
// set changes.
type MatchResult struct {
	ProjectID    ProjectID
	ProjectName  string
	TicketNumber string
	IssueKey     string
	Confidence   float64
	Source       MatchSource
	MatchedText  string
}

// Matched reports whether a project was found.
func (r MatchResult) Matched() bool { return r.Source != MatchNone && r.ProjectID != "" }

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is one dated holiday record. At most one record exists per date;
// loading a new set for the same date replaces the prior record.
type Holiday struct {
	Date Date
	Name string
	Type HolidayType
}

// ExpectedHours returns the work hours expected on this holiday.
func (h Holiday) ExpectedHours() int {
	if h.Type == HolidayHalfDay {
		return 4
	}
	return 0
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings are the operator's per-run behavior knobs.
type Settings struct {
	ConsultantID    string
	DefaultLocation string
	DefaultActivity ActivityCode
	MeetingActivity ActivityCode

	MinMatchConfidence        float64
	SkipCanceledMeetings      bool
	MinMeetingDurationMinutes int
}

// DefaultSettings returns the stock settings.
func DefaultSettings() Settings {
	return Settings{
		ConsultantID:              "FMANZOOR",
		DefaultLocation:           "ANKARA",
		DefaultActivity:           ActivityGeneral,
		MeetingActivity:           ActivityMeeting,
		MinMatchConfidence:        0.5,
		SkipCanceledMeetings:      true,
		MinMeetingDurationMinutes: 15,
	}
}

// ScheduleConfig describes the operator's workday shape. The morning
// session is [WorkdayStart, LunchStart), the afternoon session is
// [LunchEnd, WorkdayEnd).
type ScheduleConfig struct {
	MorningEnabled       bool
	MorningTriggerTime   string // "HH:MM"
	MorningHoursTarget   int
	AfternoonEnabled     bool
	AfternoonTriggerTime string
	AfternoonHoursTarget int

	WorkdayStart string
	LunchStart   string
	LunchEnd     string
	WorkdayEnd   string
}

// DefaultScheduleConfig returns the stock schedule.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		MorningEnabled:       true,
		MorningTriggerTime:   "12:15",
		MorningHoursTarget:   3,
		AfternoonEnabled:     true,
		AfternoonTriggerTime: "18:15",
		AfternoonHoursTarget: 5,
		WorkdayStart:         "09:30",
		LunchStart:           "12:15",
		LunchEnd:             "13:30",
		WorkdayEnd:           "18:15",
	}
}

// Validate parses every configured time and checks the lunch window.
func (c ScheduleConfig) Validate() error {
	for field, value := range map[string]string{
		"workday_start": c.WorkdayStart,
		"lunch_start":   c.LunchStart,
		"lunch_end":     c.LunchEnd,
		"workday_end":   c.WorkdayEnd,
	} {
		if _, err := ParseClock(value); err != nil {
			return &ConfigError{Field: field, Value: value, Message: "malformed time"}
		}
	}
	lunchStart, _ := ParseClock(c.LunchStart)
	lunchEnd, _ := ParseClock(c.LunchEnd)
	if lunchStart > lunchEnd {
		return &ConfigError{Field: "lunch_start", Value: c.LunchStart, Message: "lunch start is after lunch end"}
	}
	return nil
}

// =============================================================================
// RECENT PROJECTS - quick-pick history for the shell
// =============================================================================

// RecentProject tracks how often and how recently a project was used.
type RecentProject struct {
	ProjectID    ProjectID
	ProjectName  string
	TicketNumber string
	LastUsedAt   time.Time
	UseCount     int
}
