/*
handlers.go - HTTP API handlers for the timesheet assistant

PURPOSE:
  Exposes the reconciliation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Projects:
    GET    /api/projects               List projects (?all=true for inactive)
    POST   /api/projects               Create project
    GET    /api/projects/recent        Quick-pick history
    GET    /api/projects/{id}          Get project
    PUT    /api/projects/{id}          Update project
    DELETE /api/projects/{id}          Deactivate project

  Entries:
    GET    /api/entries                List entries (?from=&to=&status=)
    POST   /api/entries                Create manual entry
    POST   /api/entries/aggregate      Merge a date's duplicate drafts
    GET    /api/entries/{id}           Get entry
    PUT    /api/entries/{id}/status    Advance entry status
    DELETE /api/entries/{id}           Delete entry

  Meetings:
    GET    /api/meetings?date=         Cached meetings for a date
    POST   /api/meetings/sync          Fetch a range from the calendar

  Reconciliation:
    POST   /api/reconcile              Meetings -> draft entries for a date

  Days:
    GET    /api/days/{date}            Session quota summary
    GET    /api/calendar/{year}/{month} Month workday layout

  Holidays:
    GET    /api/holidays               List (?year=)
    POST   /api/holidays               Save batch (replace optional)
    POST   /api/holidays/defaults      Load the built-in table
    DELETE /api/holidays               Clear the table

  Settings:
    GET/PUT /api/settings              Operator settings
    GET/PUT /api/settings/schedule     Workday shape

  Export:
    POST   /api/export                 Write the monthly spreadsheet

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 502: Calendar source unavailable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - engine: Domain logic this layer delegates to
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/engine"
	"github.com/fmanzoor3/tiq-assistant/export"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. Source may be nil
// when no calendar account is configured; the sync endpoint then
// reports 502.
type Handler struct {
	Store    engine.Store
	Source   engine.CalendarSource
	Exporter *export.Writer
	Log      *zap.Logger

	validate *validator.Validate
	tracker  engine.QuotaTracker
}

// NewHandler creates a new handler over the given collaborators.
func NewHandler(store engine.Store, source engine.CalendarSource, exporter *export.Writer, log *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Source:   source,
		Exporter: exporter,
		Log:      log,
		validate: validator.New(),
	}
}

// =============================================================================
// PROJECT HANDLERS
// =============================================================================

// ListProjects returns tracked projects, active only unless ?all=true.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"

	projects, err := h.Store.GetProjects(r.Context(), activeOnly)
	if err != nil {
		h.writeDomainError(w, "Failed to list projects", err)
		return
	}

	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = toProjectDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProject creates a new tracked project.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	p := engine.NewProject(req.Name, req.TicketNumber)
	applyProjectRequest(&p, req)
	if err := p.Validate(); err != nil {
		h.writeDomainError(w, "Invalid project", err)
		return
	}

	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		h.writeDomainError(w, "Failed to create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectDTO(p))
}

// GetProject returns a single project.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// UpdateProject replaces a project's editable fields.
func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	p, err := h.Store.GetProject(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get project", err)
		return
	}

	applyProjectRequest(&p, req)
	p.UpdatedAt = time.Now()
	if err := p.Validate(); err != nil {
		h.writeDomainError(w, "Invalid project", err)
		return
	}
	if err := h.Store.SaveProject(r.Context(), p); err != nil {
		h.writeDomainError(w, "Failed to update project", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(p))
}

// DeleteProject deactivates a project; its entries keep their snapshots.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := engine.ProjectID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteProject(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete project", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRecentProjects returns the quick-pick history, most recent first.
func (h *Handler) ListRecentProjects(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	recents, err := h.Store.GetRecentProjects(r.Context(), limit)
	if err != nil {
		h.writeDomainError(w, "Failed to list recent projects", err)
		return
	}

	dtos := make([]RecentProjectDTO, len(recents))
	for i, rp := range recents {
		dtos[i] = RecentProjectDTO{
			ProjectID:    string(rp.ProjectID),
			ProjectName:  rp.ProjectName,
			TicketNumber: rp.TicketNumber,
			LastUsedAt:   rp.LastUsedAt.Format(time.RFC3339),
			UseCount:     rp.UseCount,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func applyProjectRequest(p *engine.Project, req CreateProjectRequest) {
	p.Name = req.Name
	p.TicketNumber = req.TicketNumber
	p.IssueKey = engine.NormalizeIssueKey(req.IssueKey)
	p.Keywords = req.Keywords
	if req.DefaultActivity != "" {
		p.DefaultActivity = engine.ActivityCode(req.DefaultActivity)
	}
	if req.DefaultLocation != "" {
		p.DefaultLocation = req.DefaultLocation
	}
}

// =============================================================================
// ENTRY HANDLERS
// =============================================================================

// ListEntries returns entries matching the optional from/to/status filters.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	var filter engine.EntryFilter

	if v := r.URL.Query().Get("from"); v != "" {
		d, err := engine.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
		filter.From = &d
	}
	if v := r.URL.Query().Get("to"); v != "" {
		d, err := engine.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
		filter.To = &d
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := engine.EntryStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
		filter.Status = &status
	}

	entries, err := h.Store.GetEntries(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEntry creates a manual entry, taking defaults from the linked
// project when one is given.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	d, err := engine.ParseDate(req.EntryDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid entry_date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load settings", err)
		return
	}

	var project *engine.Project
	if req.ProjectID != "" {
		p, err := h.Store.GetProject(ctx, engine.ProjectID(req.ProjectID))
		if err != nil {
			h.writeDomainError(w, "Failed to get project", err)
			return
		}
		project = &p
	}

	entry, err := engine.NewManualEntry(d, req.Hours, req.Description, project, settings)
	if err != nil {
		h.writeDomainError(w, "Invalid entry", err)
		return
	}
	if req.Activity != "" {
		entry.Activity = engine.ActivityCode(req.Activity)
	}
	if req.Location != "" {
		entry.Location = req.Location
	}
	if err := entry.Validate(); err != nil {
		h.writeDomainError(w, "Invalid entry", err)
		return
	}

	if err := h.Store.SaveEntry(ctx, entry); err != nil {
		h.writeDomainError(w, "Failed to save entry", err)
		return
	}
	if project != nil {
		if err := h.Store.TouchRecentProject(ctx, *project); err != nil {
			h.Log.Warn("failed to record recent project", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusCreated, toEntryDTO(entry))
}

// GetEntry returns a single entry.
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	entry, err := h.Store.GetEntry(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// UpdateEntryStatus advances an entry along the draft -> pending_review
// -> approved -> exported lifecycle. Moving backwards is rejected.
func (h *Handler) UpdateEntryStatus(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	var req UpdateEntryStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	next := engine.EntryStatus(req.Status)
	if !next.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	ctx := r.Context()
	entry, err := h.Store.GetEntry(ctx, id)
	if err != nil {
		h.writeDomainError(w, "Failed to get entry", err)
		return
	}
	if err := entry.Advance(next, time.Now()); err != nil {
		h.writeDomainError(w, "Cannot change status", err)
		return
	}
	if err := h.Store.SaveEntry(ctx, entry); err != nil {
		h.writeDomainError(w, "Failed to save entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTO(entry))
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := engine.EntryID(chi.URLParam(r, "id"))

	if err := h.Store.DeleteEntry(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AggregateEntries merges a date's draft entries that share a project,
// ticket and activity into single rows with concatenated descriptions.
// With dry_run the merged rows are returned but nothing is persisted.
func (h *Handler) AggregateEntries(w http.ResponseWriter, r *http.Request) {
	var req AggregateEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	d, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	draft := engine.StatusDraft
	drafts, err := h.Store.GetEntries(ctx, engine.EntryFilter{From: &d, To: &d, Status: &draft})
	if err != nil {
		h.writeDomainError(w, "Failed to load entries", err)
		return
	}

	merged := engine.Aggregate(drafts)

	resp := AggregateEntriesResponse{
		Date:       d.String(),
		Entries:    make([]EntryDTO, 0, len(merged)),
		MergedFrom: len(drafts),
		DryRun:     req.DryRun,
	}
	for _, e := range merged {
		resp.Entries = append(resp.Entries, toEntryDTO(e))
	}

	// Nothing collapsed; keep the existing rows and their identities.
	if req.DryRun || len(merged) == len(drafts) {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	// Merged rows go in first so a mid-replace failure can only leave
	// duplicates behind, never lose the day's drafts.
	for _, e := range merged {
		if err := h.Store.SaveEntry(ctx, e); err != nil {
			h.writeDomainError(w, "Failed to save merged entry", err)
			return
		}
	}
	for _, e := range drafts {
		if err := h.Store.DeleteEntry(ctx, e.ID); err != nil {
			h.writeDomainError(w, "Failed to replace entries", err)
			return
		}
	}
	h.Log.Info("entries aggregated",
		zap.String("date", d.String()),
		zap.Int("before", len(drafts)),
		zap.Int("after", len(merged)))
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// MEETING HANDLERS
// =============================================================================

// ListMeetings returns cached meetings for ?date= (default today).
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	d := engine.Today()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := engine.ParseDate(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		d = parsed
	}

	meetings, err := h.Store.GetMeetingsForDate(r.Context(), d)
	if err != nil {
		h.writeDomainError(w, "Failed to list meetings", err)
		return
	}

	dtos := make([]MeetingDTO, len(meetings))
	for i, m := range meetings {
		dtos[i] = toMeetingDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SyncMeetings fetches a date range from the calendar source into the
// meeting cache.
func (h *Handler) SyncMeetings(w http.ResponseWriter, r *http.Request) {
	if h.Source == nil {
		writeError(w, http.StatusBadGateway, "No calendar source configured", nil)
		return
	}

	var req SyncMeetingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	from, err := engine.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := engine.ParseDate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "to must not be before from", nil)
		return
	}

	meetings, err := h.Source.GetMeetingsForRange(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, "Calendar sync failed", err)
		return
	}

	dtos := make([]MeetingDTO, len(meetings))
	for i, m := range meetings {
		dtos[i] = toMeetingDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// RECONCILIATION
// =============================================================================

// Reconcile converts a date's unimported meetings into draft entries.
// With dry_run the drafts are returned but nothing is persisted.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	d, err := engine.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	settings, err := h.Store.GetSettings(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load settings", err)
		return
	}
	projects, err := h.Store.GetProjects(ctx, true)
	if err != nil {
		h.writeDomainError(w, "Failed to load projects", err)
		return
	}
	meetings, err := h.Store.GetMeetingsForDate(ctx, d)
	if err != nil {
		h.writeDomainError(w, "Failed to load meetings", err)
		return
	}

	// Imported meetings are done; running again must not duplicate them.
	var pending []engine.Meeting
	var events []engine.CalendarEvent
	for _, m := range meetings {
		if m.Imported {
			continue
		}
		pending = append(pending, m)
		events = append(events, m.ToEvent())
	}

	matcher := engine.NewEventMatcher(projects)
	pipeline := engine.NewPipeline(matcher)
	entries, warnings := pipeline.GenerateEntries(events, settings)

	resp := ReconcileResponse{
		Date:          d.String(),
		Entries:       make([]EntryDTO, 0, len(entries)),
		Warnings:      make([]WarningDTO, 0, len(warnings)),
		UnmatchedKeys: matcher.UnmatchedKeys(events),
		DryRun:        req.DryRun,
	}
	for _, warn := range warnings {
		resp.Warnings = append(resp.Warnings, WarningDTO{EventID: string(warn.EventID), Reason: warn.Reason})
	}

	if !req.DryRun {
		byEvent := make(map[engine.EventID]engine.Meeting, len(pending))
		for _, m := range pending {
			byEvent[engine.EventID(m.ID)] = m
		}
		for _, entry := range entries {
			if err := h.Store.SaveEntry(ctx, entry); err != nil {
				h.writeDomainError(w, "Failed to save entry", err)
				return
			}
			if m, ok := byEvent[entry.SourceEventID]; ok {
				if err := h.Store.MarkMeetingImported(ctx, m.ID, entry.ID); err != nil {
					h.Log.Warn("failed to mark meeting imported",
						zap.String("meeting_id", string(m.ID)), zap.Error(err))
				}
			}
		}
		h.Log.Info("reconciliation complete",
			zap.String("date", d.String()),
			zap.Int("entries", len(entries)),
			zap.Int("warnings", len(warnings)))
	}

	for _, entry := range entries {
		resp.Entries = append(resp.Entries, toEntryDTO(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// DAY AND CALENDAR HANDLERS
// =============================================================================

// GetDaySummary returns the session quota standing for a date.
func (h *Handler) GetDaySummary(w http.ResponseWriter, r *http.Request) {
	d, err := engine.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	ctx := r.Context()
	cfg, err := h.Store.GetScheduleConfig(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load schedule", err)
		return
	}
	entries, err := h.Store.GetEntries(ctx, engine.EntryFilter{From: &d, To: &d})
	if err != nil {
		h.writeDomainError(w, "Failed to load entries", err)
		return
	}
	meetings, err := h.Store.GetMeetingsForDate(ctx, d)
	if err != nil {
		h.writeDomainError(w, "Failed to load meetings", err)
		return
	}
	calendar, err := h.loadCalendar(r)
	if err != nil {
		h.writeDomainError(w, "Failed to load holidays", err)
		return
	}

	summary, err := h.tracker.DaySummary(d, cfg, entries, meetings)
	if err != nil {
		h.writeDomainError(w, "Failed to compute day summary", err)
		return
	}

	dto := DaySummaryDTO{
		Date:        d.String(),
		DayClass:    string(calendar.Classify(d)),
		Expected:    calendar.ExpectedHours(d),
		Morning:     h.toSessionDTO(d, engine.SessionMorning, cfg, entries, meetings, summary.Morning),
		Afternoon:   h.toSessionDTO(d, engine.SessionAfternoon, cfg, entries, meetings, summary.Afternoon),
		TotalHours:  summary.TotalHours,
		TotalTarget: summary.TotalTarget,
		Complete:    summary.Complete,
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) toSessionDTO(d engine.Date, session engine.Session, cfg engine.ScheduleConfig,
	entries []engine.TimesheetEntry, meetings []engine.Meeting, info engine.SessionInfo) SessionDTO {

	suggested, err := h.tracker.SuggestHours(d, session, cfg, entries, meetings)
	if err != nil {
		suggested = 1
	}
	return SessionDTO{
		Session:             string(info.Session),
		TargetHours:         info.TargetHours,
		LoggedHours:         info.LoggedHours,
		PendingMeetingHours: info.PendingMeetingHours,
		RemainingHours:      info.RemainingHours,
		SuggestedHours:      suggested,
		WindowStart:         info.WindowStart.String(),
		WindowEnd:           info.WindowEnd.String(),
	}
}

// GetMonth returns the month's workdays with expected hours.
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	monthNum, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	calendar, err := h.loadCalendar(r)
	if err != nil {
		h.writeDomainError(w, "Failed to load holidays", err)
		return
	}

	workdays, err := calendar.WorkdaysInMonth(year, time.Month(monthNum))
	if err != nil {
		h.writeDomainError(w, "Invalid month", err)
		return
	}

	dto := MonthSummaryDTO{
		Year:     year,
		Month:    monthNum,
		Workdays: make([]WorkdayDTO, len(workdays)),
	}
	for i, wd := range workdays {
		dto.Workdays[i] = WorkdayDTO{Date: wd.Date.String(), ExpectedHours: wd.ExpectedHours}
		dto.ExpectedTotal += wd.ExpectedHours
	}
	writeJSON(w, http.StatusOK, dto)
}

// loadCalendar builds a WorkCalendar snapshot from the holiday table.
func (h *Handler) loadCalendar(r *http.Request) (*engine.WorkCalendar, error) {
	holidays, err := h.Store.GetHolidays(r.Context(), 0)
	if err != nil {
		return nil, err
	}
	return engine.NewWorkCalendar(holidays), nil
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holiday table, optionally filtered by ?year=.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := 0
	if v := r.URL.Query().Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = n
	}

	holidays, err := h.Store.GetHolidays(r.Context(), year)
	if err != nil {
		h.writeDomainError(w, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, len(holidays))
	for i, hol := range holidays {
		dtos[i] = HolidayDTO{Date: hol.Date.String(), Name: hol.Name, Type: string(hol.Type)}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveHolidays stores a batch of holidays; with replace=true the table
// is cleared first.
func (h *Handler) SaveHolidays(w http.ResponseWriter, r *http.Request) {
	var req SaveHolidaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	holidays := make([]engine.Holiday, 0, len(req.Holidays))
	for _, dto := range req.Holidays {
		d, err := engine.ParseDate(dto.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid holiday date (use YYYY-MM-DD)", err)
			return
		}
		holidayType := engine.HolidayType(dto.Type)
		if holidayType == "" {
			holidayType = engine.HolidayFullDay
		}
		holidays = append(holidays, engine.Holiday{Date: d, Name: dto.Name, Type: holidayType})
	}

	ctx := r.Context()
	if req.Replace {
		if _, err := h.Store.ClearAllHolidays(ctx); err != nil {
			h.writeDomainError(w, "Failed to clear holidays", err)
			return
		}
	}
	count, err := h.Store.SaveHolidaysBatch(ctx, holidays, "api")
	if err != nil {
		h.writeDomainError(w, "Failed to save holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": count})
}

// LoadDefaultHolidays loads the built-in holiday table.
func (h *Handler) LoadDefaultHolidays(w http.ResponseWriter, r *http.Request) {
	count, err := h.Store.SaveHolidaysBatch(r.Context(), engine.DefaultHolidays(), "defaults")
	if err != nil {
		h.writeDomainError(w, "Failed to load default holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": count})
}

// ClearHolidays empties the holiday table.
func (h *Handler) ClearHolidays(w http.ResponseWriter, r *http.Request) {
	count, err := h.Store.ClearAllHolidays(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to clear holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": count})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the operator settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// UpdateSettings replaces the operator settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	settings := settingsFromDTO(req)
	if !settings.DefaultActivity.Valid() || !settings.MeetingActivity.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown activity code", nil)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		h.writeDomainError(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// GetSchedule returns the workday shape.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Store.GetScheduleConfig(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(cfg))
}

// UpdateSchedule replaces the workday shape.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	cfg := scheduleFromDTO(req)
	if err := cfg.Validate(); err != nil {
		h.writeDomainError(w, "Invalid schedule", err)
		return
	}
	if err := h.Store.SaveScheduleConfig(r.Context(), cfg); err != nil {
		h.writeDomainError(w, "Failed to save schedule", err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleDTO(cfg))
}

// =============================================================================
// EXPORT
// =============================================================================

// ExportMonth writes the month's approved entries (all statuses with
// all=true) to the monthly spreadsheet and marks them exported.
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	if h.Exporter == nil {
		writeError(w, http.StatusInternalServerError, "No export directory configured", nil)
		return
	}

	var req ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	month := time.Month(req.Month)
	from := engine.NewDate(req.Year, month, 1)
	to := engine.NewDate(req.Year, month, engine.DaysInMonth(req.Year, month))

	filter := engine.EntryFilter{From: &from, To: &to}
	if !req.All {
		approved := engine.StatusApproved
		filter.Status = &approved
	}

	ctx := r.Context()
	entries, err := h.Store.GetEntries(ctx, filter)
	if err != nil {
		h.writeDomainError(w, "Failed to load entries", err)
		return
	}
	if req.All {
		// Everything except already-exported rows.
		kept := entries[:0]
		for _, e := range entries {
			if e.Status != engine.StatusExported {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	path, rows, err := h.Exporter.WriteMonthly(req.Year, month, entries)
	if err != nil {
		h.writeDomainError(w, "Export failed", err)
		return
	}

	ids := make([]engine.EntryID, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := h.Store.MarkEntriesExported(ctx, ids, time.Now()); err != nil {
		h.writeDomainError(w, "Failed to mark entries exported", err)
		return
	}

	h.Log.Info("export complete",
		zap.String("path", path),
		zap.Int("rows", rows))
	writeJSON(w, http.StatusOK, ExportResponse{Path: path, Rows: rows, Entries: len(entries)})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, engine.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, message, err)
	default:
		h.Log.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
