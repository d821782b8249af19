// Package store provides an in-memory Store implementation for tests and
// dev mode. It mirrors the SQLite store's semantics: soft-deleted
// projects, last-write-wins holiday records, imported-flag preservation.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// Memory implements engine.Store with maps behind a RWMutex.
type Memory struct {
	mu       sync.RWMutex
	projects map[engine.ProjectID]engine.Project
	entries  map[engine.EntryID]engine.TimesheetEntry
	meetings map[engine.MeetingID]engine.Meeting
	holidays map[engine.Date]engine.Holiday
	recents  map[engine.ProjectID]engine.RecentProject

	settings *engine.Settings
	schedule *engine.ScheduleConfig
}

func NewMemory() *Memory {
	return &Memory{
		projects: make(map[engine.ProjectID]engine.Project),
		entries:  make(map[engine.EntryID]engine.TimesheetEntry),
		meetings: make(map[engine.MeetingID]engine.Meeting),
		holidays: make(map[engine.Date]engine.Holiday),
		recents:  make(map[engine.ProjectID]engine.RecentProject),
	}
}

// =============================================================================
// PROJECTS
// =============================================================================

func (m *Memory) SaveProject(_ context.Context, p engine.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.IssueKey = engine.NormalizeIssueKey(p.IssueKey)
	m.projects[p.ID] = p
	return nil
}

func (m *Memory) GetProject(_ context.Context, id engine.ProjectID) (engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.Project{}, engine.ErrNotFound
	}
	return p, nil
}

func (m *Memory) GetProjects(_ context.Context, activeOnly bool) ([]engine.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Project
	for _, p := range m.projects {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) DeleteProject(_ context.Context, id engine.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return engine.ErrNotFound
	}
	p.Active = false
	p.UpdatedAt = time.Now()
	m.projects[id] = p
	return nil
}

func (m *Memory) FindProjectByIssueKey(_ context.Context, key string) (engine.Project, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key = engine.NormalizeIssueKey(key)
	if key == "" {
		return engine.Project{}, false, nil
	}
	for _, p := range m.projects {
		if p.Active && p.IssueKey == key {
			return p, true, nil
		}
	}
	return engine.Project{}, false, nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (m *Memory) SaveEntry(_ context.Context, e engine.TimesheetEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *Memory) GetEntry(_ context.Context, id engine.EntryID) (engine.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return engine.TimesheetEntry{}, engine.ErrNotFound
	}
	return e, nil
}

func (m *Memory) GetEntries(_ context.Context, filter engine.EntryFilter) ([]engine.TimesheetEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.TimesheetEntry
	for _, e := range m.entries {
		if filter.From != nil && e.EntryDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.EntryDate.After(*filter.To) {
			continue
		}
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.Before(out[j].EntryDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *Memory) DeleteEntry(_ context.Context, id engine.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

func (m *Memory) MarkEntriesExported(_ context.Context, ids []engine.EntryID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		e.Status = engine.StatusExported
		e.UpdatedAt = at
		if e.ExportedAt == nil {
			t := at
			e.ExportedAt = &t
		}
		m.entries[id] = e
	}
	return nil
}

// =============================================================================
// MEETINGS
// =============================================================================

func (m *Memory) SaveMeeting(_ context.Context, meeting engine.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings[meeting.ID] = meeting
	return nil
}

func (m *Memory) GetMeeting(_ context.Context, id engine.MeetingID) (engine.Meeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return engine.Meeting{}, engine.ErrNotFound
	}
	return meeting, nil
}

func (m *Memory) GetMeetingsForDate(_ context.Context, d engine.Date) ([]engine.Meeting, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Meeting
	for _, meeting := range m.meetings {
		if engine.DateOf(meeting.Start).Equal(d) {
			out = append(out, meeting)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *Memory) MarkMeetingImported(_ context.Context, id engine.MeetingID, entryID engine.EntryID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	meeting, ok := m.meetings[id]
	if !ok {
		return engine.ErrNotFound
	}
	meeting.Imported = true
	meeting.ImportedEntryID = entryID
	m.meetings[id] = meeting
	return nil
}

func (m *Memory) ClearOldMeetings(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for id, meeting := range m.meetings {
		if meeting.Start.Before(before) {
			delete(m.meetings, id)
			count++
		}
	}
	return count, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) SaveHolidaysBatch(_ context.Context, holidays []engine.Holiday, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range holidays {
		m.holidays[h.Date] = h
	}
	return len(holidays), nil
}

func (m *Memory) GetHolidays(_ context.Context, year int) ([]engine.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Holiday
	for _, h := range m.holidays {
		if year != 0 && h.Date.Year() != year {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *Memory) ClearAllHolidays(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.holidays)
	m.holidays = make(map[engine.Date]engine.Holiday)
	return count, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSettings(_ context.Context) (engine.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return engine.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s engine.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *Memory) GetScheduleConfig(_ context.Context) (engine.ScheduleConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.schedule == nil {
		return engine.DefaultScheduleConfig(), nil
	}
	return *m.schedule, nil
}

func (m *Memory) SaveScheduleConfig(_ context.Context, c engine.ScheduleConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = &c
	return nil
}

func (m *Memory) GetRecentProjects(_ context.Context, limit int) ([]engine.RecentProject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.RecentProject, 0, len(m.recents))
	for _, r := range m.recents {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsedAt.After(out[j].LastUsedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) TouchRecentProject(_ context.Context, p engine.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recents[p.ID]
	if !ok {
		r = engine.RecentProject{ProjectID: p.ID, UseCount: 0}
	}
	r.ProjectName = p.Name
	r.TicketNumber = p.TicketNumber
	r.LastUsedAt = time.Now()
	r.UseCount++
	m.recents[p.ID] = r
	return nil
}

// interface guard
var _ engine.Store = (*Memory)(nil)
