/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through the shared validator before touching domain logic.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/types.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// =============================================================================
// PROJECTS
// =============================================================================

// ProjectDTO represents a tracked project in API responses.
type ProjectDTO struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	TicketNumber    string   `json:"ticket_number"`
	IssueKey        string   `json:"issue_key,omitempty"`
	Keywords        []string `json:"keywords"`
	DefaultActivity string   `json:"default_activity_code"`
	DefaultLocation string   `json:"default_location"`
	Active          bool     `json:"is_active"`
	CreatedAt       string   `json:"created_at"`
}

// CreateProjectRequest creates or updates a project.
type CreateProjectRequest struct {
	Name            string   `json:"name" validate:"required"`
	TicketNumber    string   `json:"ticket_number" validate:"required"`
	IssueKey        string   `json:"issue_key"`
	Keywords        []string `json:"keywords"`
	DefaultActivity string   `json:"default_activity_code"`
	DefaultLocation string   `json:"default_location"`
}

func toProjectDTO(p engine.Project) ProjectDTO {
	keywords := p.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return ProjectDTO{
		ID:              string(p.ID),
		Name:            p.Name,
		TicketNumber:    p.TicketNumber,
		IssueKey:        p.IssueKey,
		Keywords:        keywords,
		DefaultActivity: string(p.DefaultActivity),
		DefaultLocation: p.DefaultLocation,
		Active:          p.Active,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// ENTRIES
// =============================================================================

// EntryDTO represents a timesheet entry in API responses.
type EntryDTO struct {
	ID           string `json:"id"`
	ConsultantID string `json:"consultant_id"`
	EntryDate    string `json:"entry_date"`
	Hours        int    `json:"hours"`
	TicketNumber string `json:"ticket_number,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`
	Activity     string `json:"activity_code"`
	Location     string `json:"location"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Source       string `json:"source"`
	ExportedAt   string `json:"exported_at,omitempty"`
}

// CreateEntryRequest creates a manual entry.
type CreateEntryRequest struct {
	EntryDate   string `json:"entry_date" validate:"required"`
	Hours       int    `json:"hours" validate:"required,min=1,max=24"`
	Description string `json:"description" validate:"required"`
	ProjectID   string `json:"project_id"`
	Activity    string `json:"activity_code"`
	Location    string `json:"location"`
}

// UpdateEntryStatusRequest advances an entry's lifecycle status.
type UpdateEntryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AggregateEntriesRequest merges a date's draft entries that share a
// project and activity.
type AggregateEntriesRequest struct {
	Date   string `json:"date" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// AggregateEntriesResponse reports the merge result.
type AggregateEntriesResponse struct {
	Date       string     `json:"date"`
	Entries    []EntryDTO `json:"entries"`
	MergedFrom int        `json:"merged_from"`
	DryRun     bool       `json:"dry_run"`
}

func toEntryDTO(e engine.TimesheetEntry) EntryDTO {
	dto := EntryDTO{
		ID:           string(e.ID),
		ConsultantID: e.ConsultantID,
		EntryDate:    e.EntryDate.String(),
		Hours:        e.Hours,
		TicketNumber: e.TicketNumber,
		ProjectName:  e.ProjectName,
		Activity:     string(e.Activity),
		Location:     e.Location,
		Description:  e.Description,
		Status:       string(e.Status),
		Source:       string(e.Source),
	}
	if e.ExportedAt != nil {
		dto.ExportedAt = e.ExportedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// MEETINGS AND RECONCILIATION
// =============================================================================

// MeetingDTO represents a cached calendar meeting.
type MeetingDTO struct {
	ID              string  `json:"id"`
	Subject         string  `json:"subject"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	DurationMinutes int     `json:"duration_minutes"`
	TeamsMeeting    bool    `json:"is_teams"`
	Organizer       string  `json:"organizer,omitempty"`
	MatchedProject  string  `json:"matched_project_id,omitempty"`
	MatchedIssueKey string  `json:"matched_issue_key,omitempty"`
	MatchConfidence float64 `json:"match_confidence"`
	Imported        bool    `json:"is_imported"`
}

func toMeetingDTO(m engine.Meeting) MeetingDTO {
	return MeetingDTO{
		ID:              string(m.ID),
		Subject:         m.Subject,
		Start:           m.Start.Format(time.RFC3339),
		End:             m.End.Format(time.RFC3339),
		DurationMinutes: m.DurationMinutes(),
		TeamsMeeting:    m.TeamsMeeting,
		Organizer:       m.Organizer,
		MatchedProject:  string(m.MatchedProjectID),
		MatchedIssueKey: m.MatchedIssueKey,
		MatchConfidence: m.MatchConfidence,
		Imported:        m.Imported,
	}
}

// SyncMeetingsRequest fetches a date range from the calendar source.
type SyncMeetingsRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// ReconcileRequest turns a date's meetings into draft entries.
type ReconcileRequest struct {
	Date   string `json:"date" validate:"required"`
	DryRun bool   `json:"dry_run"`
}

// WarningDTO reports an event the pipeline could not convert.
type WarningDTO struct {
	EventID string `json:"event_id"`
	Reason  string `json:"reason"`
}

// ReconcileResponse is the outcome of a reconciliation run.
type ReconcileResponse struct {
	Date          string       `json:"date"`
	Entries       []EntryDTO   `json:"entries"`
	Warnings      []WarningDTO `json:"warnings"`
	UnmatchedKeys []string     `json:"unmatched_keys"`
	DryRun        bool         `json:"dry_run"`
}

// =============================================================================
// SESSIONS AND CALENDAR
// =============================================================================

// SessionDTO is one session's quota standing.
type SessionDTO struct {
	Session             string `json:"session"`
	TargetHours         int    `json:"target_hours"`
	LoggedHours         int    `json:"logged_hours"`
	PendingMeetingHours int    `json:"pending_meeting_hours"`
	RemainingHours      int    `json:"remaining_hours"`
	SuggestedHours      int    `json:"suggested_hours"`
	WindowStart         string `json:"window_start"`
	WindowEnd           string `json:"window_end"`
}

// DaySummaryDTO concatenates both sessions of a date.
type DaySummaryDTO struct {
	Date        string     `json:"date"`
	DayClass    string     `json:"day_class"`
	Expected    int        `json:"expected_hours"`
	Morning     SessionDTO `json:"morning"`
	Afternoon   SessionDTO `json:"afternoon"`
	TotalHours  int        `json:"total_hours"`
	TotalTarget int        `json:"total_target"`
	Complete    bool       `json:"complete"`
}

// HolidayDTO represents one holiday table row.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// SaveHolidaysRequest replaces or extends the holiday table.
type SaveHolidaysRequest struct {
	Holidays []HolidayDTO `json:"holidays" validate:"required,dive"`
	Replace  bool         `json:"replace"`
}

// WorkdayDTO is one classified day of a month.
type WorkdayDTO struct {
	Date          string `json:"date"`
	ExpectedHours int    `json:"expected_hours"`
}

// MonthSummaryDTO describes a month's expected workload.
type MonthSummaryDTO struct {
	Year          int          `json:"year"`
	Month         int          `json:"month"`
	Workdays      []WorkdayDTO `json:"workdays"`
	ExpectedTotal int          `json:"expected_total_hours"`
}

// =============================================================================
// SETTINGS AND EXPORT
// =============================================================================

// SettingsDTO mirrors engine.Settings over the wire.
type SettingsDTO struct {
	ConsultantID              string  `json:"consultant_id" validate:"required"`
	DefaultLocation           string  `json:"default_location" validate:"required"`
	DefaultActivity           string  `json:"default_activity_code" validate:"required"`
	MeetingActivity           string  `json:"meeting_activity_code" validate:"required"`
	MinMatchConfidence        float64 `json:"min_match_confidence" validate:"gte=0,lte=1"`
	SkipCanceledMeetings      bool    `json:"skip_canceled_meetings"`
	MinMeetingDurationMinutes int     `json:"min_meeting_duration_minutes" validate:"gte=0"`
}

// ScheduleDTO mirrors engine.ScheduleConfig over the wire.
type ScheduleDTO struct {
	MorningEnabled       bool   `json:"morning_enabled"`
	MorningTriggerTime   string `json:"morning_trigger_time" validate:"required"`
	MorningHoursTarget   int    `json:"morning_hours_target" validate:"gte=0,lte=12"`
	AfternoonEnabled     bool   `json:"afternoon_enabled"`
	AfternoonTriggerTime string `json:"afternoon_trigger_time" validate:"required"`
	AfternoonHoursTarget int    `json:"afternoon_hours_target" validate:"gte=0,lte=12"`
	WorkdayStart         string `json:"workday_start" validate:"required"`
	LunchStart           string `json:"lunch_start" validate:"required"`
	LunchEnd             string `json:"lunch_end" validate:"required"`
	WorkdayEnd           string `json:"workday_end" validate:"required"`
}

// ExportRequest writes approved entries to the monthly spreadsheet.
type ExportRequest struct {
	Year  int  `json:"year" validate:"required,min=1,max=9999"`
	Month int  `json:"month" validate:"required,min=1,max=12"`
	All   bool `json:"all"` // include drafts, not just approved
}

// ExportResponse reports the written file.
type ExportResponse struct {
	Path    string `json:"path"`
	Rows    int    `json:"rows"`
	Entries int    `json:"entries"`
}

// RecentProjectDTO is a quick-pick history row.
type RecentProjectDTO struct {
	ProjectID    string `json:"project_id"`
	ProjectName  string `json:"project_name"`
	TicketNumber string `json:"ticket_number"`
	LastUsedAt   string `json:"last_used_at"`
	UseCount     int    `json:"use_count"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func settingsFromDTO(dto SettingsDTO) engine.Settings {
	return engine.Settings{
		ConsultantID:              dto.ConsultantID,
		DefaultLocation:           dto.DefaultLocation,
		DefaultActivity:           engine.ActivityCode(dto.DefaultActivity),
		MeetingActivity:           engine.ActivityCode(dto.MeetingActivity),
		MinMatchConfidence:        dto.MinMatchConfidence,
		SkipCanceledMeetings:      dto.SkipCanceledMeetings,
		MinMeetingDurationMinutes: dto.MinMeetingDurationMinutes,
	}
}

func toSettingsDTO(s engine.Settings) SettingsDTO {
	return SettingsDTO{
		ConsultantID:              s.ConsultantID,
		DefaultLocation:           s.DefaultLocation,
		DefaultActivity:           string(s.DefaultActivity),
		MeetingActivity:           string(s.MeetingActivity),
		MinMatchConfidence:        s.MinMatchConfidence,
		SkipCanceledMeetings:      s.SkipCanceledMeetings,
		MinMeetingDurationMinutes: s.MinMeetingDurationMinutes,
	}
}

func scheduleFromDTO(dto ScheduleDTO) engine.ScheduleConfig {
	return engine.ScheduleConfig{
		MorningEnabled:       dto.MorningEnabled,
		MorningTriggerTime:   dto.MorningTriggerTime,
		MorningHoursTarget:   dto.MorningHoursTarget,
		AfternoonEnabled:     dto.AfternoonEnabled,
		AfternoonTriggerTime: dto.AfternoonTriggerTime,
		AfternoonHoursTarget: dto.AfternoonHoursTarget,
		WorkdayStart:         dto.WorkdayStart,
		LunchStart:           dto.LunchStart,
		LunchEnd:             dto.LunchEnd,
		WorkdayEnd:           dto.WorkdayEnd,
	}
}

func toScheduleDTO(c engine.ScheduleConfig) ScheduleDTO {
	return ScheduleDTO{
		MorningEnabled:       c.MorningEnabled,
		MorningTriggerTime:   c.MorningTriggerTime,
		MorningHoursTarget:   c.MorningHoursTarget,
		AfternoonEnabled:     c.AfternoonEnabled,
		AfternoonTriggerTime: c.AfternoonTriggerTime,
		AfternoonHoursTarget: c.AfternoonHoursTarget,
		WorkdayStart:         c.WorkdayStart,
		LunchStart:           c.LunchStart,
		LunchEnd:             c.LunchEnd,
		WorkdayEnd:           c.WorkdayEnd,
	}
}
