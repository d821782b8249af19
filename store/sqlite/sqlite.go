/*
Package sqlite provides the SQLite-backed implementation of the
persistence collaborator.

PURPOSE:
  Implements engine.Store for a single-operator dataset: projects,
  timesheet entries, the meeting cache, the holiday table, and the
  operator's settings/schedule rows.

KEY TABLES:
  projects:           Tracked projects (soft-deleted via is_active)
  timesheet_entries:  Exportable rows with denormalized project snapshot
  meetings:           Cached calendar records with the imported marker
  holidays:           Operator-loaded holiday table (unique per date)
  user_settings:      Single-row settings (id = 1)
  schedule_config:    Single-row workday shape (id = 1)
  recent_projects:    Quick-pick history

WAL MODE:
  The database is opened with WAL and foreign keys on. A RWMutex guards
  the connection; the dataset is single-operator so contention is not a
  concern.

USAGE:
  store, err := sqlite.New("./tiq.db")   // ":memory:" for tests
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (and migrates) the database at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ticket_number TEXT NOT NULL,
		issue_key TEXT,
		keywords TEXT DEFAULT '[]',
		default_activity_code TEXT DEFAULT 'GLST',
		default_location TEXT DEFAULT 'ANKARA',
		is_active INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS timesheet_entries (
		id TEXT PRIMARY KEY,
		consultant_id TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		hours INTEGER NOT NULL,
		ticket_number TEXT,
		project_name TEXT,
		activity_code TEXT NOT NULL,
		location TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT DEFAULT 'draft',
		source TEXT DEFAULT 'manual',
		source_event_id TEXT,
		source_issue_key TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		exported_at TEXT
	);

	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		is_teams INTEGER DEFAULT 0,
		is_recurring INTEGER DEFAULT 0,
		organizer TEXT,
		location TEXT,
		body TEXT,
		matched_project_id TEXT,
		matched_issue_key TEXT,
		match_confidence REAL DEFAULT 0.0,
		is_imported INTEGER DEFAULT 0,
		imported_entry_id TEXT,
		fetched_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holidays (
		holiday_date TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		holiday_type TEXT DEFAULT 'full_day',
		source_tag TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		consultant_id TEXT NOT NULL,
		default_location TEXT NOT NULL,
		default_activity_code TEXT NOT NULL,
		meeting_activity_code TEXT NOT NULL,
		min_match_confidence REAL DEFAULT 0.5,
		skip_canceled_meetings INTEGER DEFAULT 1,
		min_meeting_duration_minutes INTEGER DEFAULT 15
	);

	CREATE TABLE IF NOT EXISTS schedule_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		morning_enabled INTEGER DEFAULT 1,
		morning_trigger_time TEXT DEFAULT '12:15',
		morning_hours_target INTEGER DEFAULT 3,
		afternoon_enabled INTEGER DEFAULT 1,
		afternoon_trigger_time TEXT DEFAULT '18:15',
		afternoon_hours_target INTEGER DEFAULT 5,
		workday_start TEXT DEFAULT '09:30',
		lunch_start TEXT DEFAULT '12:15',
		lunch_end TEXT DEFAULT '13:30',
		workday_end TEXT DEFAULT '18:15'
	);

	CREATE TABLE IF NOT EXISTS recent_projects (
		project_id TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		ticket_number TEXT NOT NULL,
		last_used_at TEXT NOT NULL,
		use_count INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_entries_date ON timesheet_entries(entry_date);
	CREATE INDEX IF NOT EXISTS idx_entries_status ON timesheet_entries(status);
	CREATE INDEX IF NOT EXISTS idx_projects_issue_key ON projects(issue_key);
	CREATE INDEX IF NOT EXISTS idx_meetings_start ON meetings(start_at);
	CREATE INDEX IF NOT EXISTS idx_recent_projects_last_used ON recent_projects(last_used_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PROJECTS
// =============================================================================

func (s *Store) SaveProject(ctx context.Context, p engine.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO projects
		(id, name, ticket_number, issue_key, keywords, default_activity_code,
		 default_location, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.ID),
		p.Name,
		p.TicketNumber,
		nullString(engine.NormalizeIssueKey(p.IssueKey)),
		string(keywords),
		string(p.DefaultActivity),
		p.DefaultLocation,
		boolInt(p.Active),
		p.CreatedAt.Format(time.RFC3339Nano),
		p.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetProject(ctx context.Context, id engine.ProjectID) (engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, string(id))
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Project{}, engine.ErrNotFound
	}
	return p, err
}

func (s *Store) GetProjects(ctx context.Context, activeOnly bool) ([]engine.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + projectColumns + ` FROM projects`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []engine.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// DeleteProject soft-deletes: the row stays so entries keep their history.
func (s *Store) DeleteProject(ctx context.Context, id engine.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().Format(time.RFC3339Nano), string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrNotFound
	}
	return nil
}

func (s *Store) FindProjectByIssueKey(ctx context.Context, key string) (engine.Project, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key = engine.NormalizeIssueKey(key)
	if key == "" {
		return engine.Project{}, false, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE issue_key = ? AND is_active = 1`, key)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Project{}, false, nil
	}
	if err != nil {
		return engine.Project{}, false, err
	}
	return p, true, nil
}

const projectColumns = `id, name, ticket_number, issue_key, keywords,
	default_activity_code, default_location, is_active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (engine.Project, error) {
	var (
		p         engine.Project
		id        string
		issueKey  sql.NullString
		keywords  string
		activity  string
		active    int
		createdAt string
		updatedAt string
	)
	err := row.Scan(&id, &p.Name, &p.TicketNumber, &issueKey, &keywords,
		&activity, &p.DefaultLocation, &active, &createdAt, &updatedAt)
	if err != nil {
		return engine.Project{}, err
	}
	p.ID = engine.ProjectID(id)
	p.IssueKey = issueKey.String
	p.DefaultActivity = engine.ActivityCode(activity)
	p.Active = active != 0
	if err := json.Unmarshal([]byte(keywords), &p.Keywords); err != nil {
		return engine.Project{}, fmt.Errorf("unmarshal keywords: %w", err)
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

// =============================================================================
// TIMESHEET ENTRIES
// =============================================================================

func (s *Store) SaveEntry(ctx context.Context, e engine.TimesheetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exportedAt any
	if e.ExportedAt != nil {
		exportedAt = e.ExportedAt.Format(time.RFC3339Nano)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO timesheet_entries
		(id, consultant_id, entry_date, hours, ticket_number, project_name,
		 activity_code, location, description, status, source, source_event_id,
		 source_issue_key, created_at, updated_at, exported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID),
		e.ConsultantID,
		e.EntryDate.String(),
		e.Hours,
		nullString(e.TicketNumber),
		nullString(e.ProjectName),
		string(e.Activity),
		e.Location,
		e.Description,
		string(e.Status),
		string(e.Source),
		nullString(string(e.SourceEventID)),
		nullString(e.SourceIssueKey),
		e.CreatedAt.Format(time.RFC3339Nano),
		e.UpdatedAt.Format(time.RFC3339Nano),
		exportedAt,
	)
	return err
}

func (s *Store) GetEntry(ctx context.Context, id engine.EntryID) (engine.TimesheetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM timesheet_entries WHERE id = ?`, string(id))
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.TimesheetEntry{}, engine.ErrNotFound
	}
	return e, err
}

func (s *Store) GetEntries(ctx context.Context, filter engine.EntryFilter) ([]engine.TimesheetEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + entryColumns + ` FROM timesheet_entries WHERE 1=1`
	var params []any
	if filter.From != nil {
		query += ` AND entry_date >= ?`
		params = append(params, filter.From.String())
	}
	if filter.To != nil {
		query += ` AND entry_date <= ?`
		params = append(params, filter.To.String())
	}
	if filter.Status != nil {
		query += ` AND status = ?`
		params = append(params, string(*filter.Status))
	}
	query += ` ORDER BY entry_date, created_at`

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []engine.TimesheetEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) DeleteEntry(ctx context.Context, id engine.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM timesheet_entries WHERE id = ?`, string(id))
	return err
}

// MarkEntriesExported advances the rows to exported. exported_at is set
// only where it is still NULL; it is never overwritten.
func (s *Store) MarkEntriesExported(ctx context.Context, ids []engine.EntryID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := at.Format(time.RFC3339Nano)
	for _, id := range ids {
		_, err := s.db.ExecContext(ctx, `
			UPDATE timesheet_entries
			SET status = ?, exported_at = COALESCE(exported_at, ?), updated_at = ?
			WHERE id = ?`,
			string(engine.StatusExported), ts, ts, string(id))
		if err != nil {
			return err
		}
	}
	return nil
}

const entryColumns = `id, consultant_id, entry_date, hours, ticket_number,
	project_name, activity_code, location, description, status, source,
	source_event_id, source_issue_key, created_at, updated_at, exported_at`

func scanEntry(row rowScanner) (engine.TimesheetEntry, error) {
	var (
		e          engine.TimesheetEntry
		id         string
		entryDate  string
		ticket     sql.NullString
		project    sql.NullString
		activity   string
		status     string
		source     string
		eventID    sql.NullString
		issueKey   sql.NullString
		createdAt  string
		updatedAt  string
		exportedAt sql.NullString
	)
	err := row.Scan(&id, &e.ConsultantID, &entryDate, &e.Hours, &ticket, &project,
		&activity, &e.Location, &e.Description, &status, &source, &eventID,
		&issueKey, &createdAt, &updatedAt, &exportedAt)
	if err != nil {
		return engine.TimesheetEntry{}, err
	}
	e.ID = engine.EntryID(id)
	d, err := engine.ParseDate(entryDate)
	if err != nil {
		return engine.TimesheetEntry{}, err
	}
	e.EntryDate = d
	e.TicketNumber = ticket.String
	e.ProjectName = project.String
	e.Activity = engine.ActivityCode(activity)
	e.Status = engine.EntryStatus(status)
	e.Source = engine.EntrySource(source)
	e.SourceEventID = engine.EventID(eventID.String)
	e.SourceIssueKey = issueKey.String
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	if exportedAt.Valid {
		t := parseTime(exportedAt.String)
		e.ExportedAt = &t
	}
	return e, nil
}

// =============================================================================
// MEETINGS
// =============================================================================

func (s *Store) SaveMeeting(ctx context.Context, m engine.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO meetings
		(id, subject, start_at, end_at, is_teams, is_recurring, organizer,
		 location, body, matched_project_id, matched_issue_key,
		 match_confidence, is_imported, imported_entry_id, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(m.ID),
		m.Subject,
		m.Start.Format(time.RFC3339Nano),
		m.End.Format(time.RFC3339Nano),
		boolInt(m.TeamsMeeting),
		boolInt(m.Recurring),
		nullString(m.Organizer),
		nullString(m.Location),
		nullString(m.Body),
		nullString(string(m.MatchedProjectID)),
		nullString(m.MatchedIssueKey),
		m.MatchConfidence,
		boolInt(m.Imported),
		nullString(string(m.ImportedEntryID)),
		m.FetchedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetMeeting(ctx context.Context, id engine.MeetingID) (engine.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, string(id))
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Meeting{}, engine.ErrNotFound
	}
	return m, err
}

func (s *Store) GetMeetingsForDate(ctx context.Context, d engine.Date) ([]engine.Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart := d.Time()
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE start_at >= ? AND start_at < ?
		ORDER BY start_at`,
		dayStart.Format(time.RFC3339Nano), dayEnd.Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []engine.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

func (s *Store) MarkMeetingImported(ctx context.Context, id engine.MeetingID, entryID engine.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE meetings SET is_imported = 1, imported_entry_id = ? WHERE id = ?`,
		string(entryID), string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrNotFound
	}
	return nil
}

func (s *Store) ClearOldMeetings(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM meetings WHERE start_at < ?`,
		before.Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const meetingColumns = `id, subject, start_at, end_at, is_teams, is_recurring,
	organizer, location, body, matched_project_id, matched_issue_key,
	match_confidence, is_imported, imported_entry_id, fetched_at`

func scanMeeting(row rowScanner) (engine.Meeting, error) {
	var (
		m         engine.Meeting
		id        string
		startAt   string
		endAt     string
		teams     int
		recurring int
		organizer sql.NullString
		location  sql.NullString
		body      sql.NullString
		projectID sql.NullString
		issueKey  sql.NullString
		imported  int
		entryID   sql.NullString
		fetchedAt string
	)
	err := row.Scan(&id, &m.Subject, &startAt, &endAt, &teams, &recurring,
		&organizer, &location, &body, &projectID, &issueKey,
		&m.MatchConfidence, &imported, &entryID, &fetchedAt)
	if err != nil {
		return engine.Meeting{}, err
	}
	m.ID = engine.MeetingID(id)
	m.Start = parseTime(startAt)
	m.End = parseTime(endAt)
	m.TeamsMeeting = teams != 0
	m.Recurring = recurring != 0
	m.Organizer = organizer.String
	m.Location = location.String
	m.Body = body.String
	m.MatchedProjectID = engine.ProjectID(projectID.String)
	m.MatchedIssueKey = issueKey.String
	m.Imported = imported != 0
	m.ImportedEntryID = engine.EntryID(entryID.String)
	m.FetchedAt = parseTime(fetchedAt)
	return m, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHolidaysBatch upserts by date: last write wins, per the
// replace-table semantics of the holiday model.
func (s *Store) SaveHolidaysBatch(ctx context.Context, holidays []engine.Holiday, sourceTag string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Format(time.RFC3339Nano)
	count := 0
	for _, h := range holidays {
		_, err := s.db.ExecContext(ctx, `
			INSERT OR REPLACE INTO holidays
			(holiday_date, name, holiday_type, source_tag, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			h.Date.String(), h.Name, string(h.Type), nullString(sourceTag), now)
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *Store) GetHolidays(ctx context.Context, year int) ([]engine.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT holiday_date, name, holiday_type FROM holidays`
	var params []any
	if year != 0 {
		query += ` WHERE holiday_date LIKE ?`
		params = append(params, fmt.Sprintf("%04d-%%", year))
	}
	query += ` ORDER BY holiday_date`

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []engine.Holiday
	for rows.Next() {
		var dateStr, name, typeStr string
		if err := rows.Scan(&dateStr, &name, &typeStr); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(dateStr)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, engine.Holiday{
			Date: d,
			Name: name,
			Type: engine.HolidayType(typeStr),
		})
	}
	return holidays, rows.Err()
}

func (s *Store) ClearAllHolidays(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM holidays`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetSettings(ctx context.Context) (engine.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT consultant_id, default_location, default_activity_code,
		       meeting_activity_code, min_match_confidence,
		       skip_canceled_meetings, min_meeting_duration_minutes
		FROM user_settings WHERE id = 1`)

	var (
		cfg          engine.Settings
		defActivity  string
		meetActivity string
		skipCanceled int
	)
	err := row.Scan(&cfg.ConsultantID, &cfg.DefaultLocation, &defActivity,
		&meetActivity, &cfg.MinMatchConfidence, &skipCanceled,
		&cfg.MinMeetingDurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.DefaultSettings(), nil
	}
	if err != nil {
		return engine.Settings{}, err
	}
	cfg.DefaultActivity = engine.ActivityCode(defActivity)
	cfg.MeetingActivity = engine.ActivityCode(meetActivity)
	cfg.SkipCanceledMeetings = skipCanceled != 0
	return cfg, nil
}

func (s *Store) SaveSettings(ctx context.Context, cfg engine.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_settings
		(id, consultant_id, default_location, default_activity_code,
		 meeting_activity_code, min_match_confidence, skip_canceled_meetings,
		 min_meeting_duration_minutes)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ConsultantID,
		cfg.DefaultLocation,
		string(cfg.DefaultActivity),
		string(cfg.MeetingActivity),
		cfg.MinMatchConfidence,
		boolInt(cfg.SkipCanceledMeetings),
		cfg.MinMeetingDurationMinutes,
	)
	return err
}

func (s *Store) GetScheduleConfig(ctx context.Context) (engine.ScheduleConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT morning_enabled, morning_trigger_time, morning_hours_target,
		       afternoon_enabled, afternoon_trigger_time, afternoon_hours_target,
		       workday_start, lunch_start, lunch_end, workday_end
		FROM schedule_config WHERE id = 1`)

	var (
		cfg              engine.ScheduleConfig
		morningEnabled   int
		afternoonEnabled int
	)
	err := row.Scan(&morningEnabled, &cfg.MorningTriggerTime, &cfg.MorningHoursTarget,
		&afternoonEnabled, &cfg.AfternoonTriggerTime, &cfg.AfternoonHoursTarget,
		&cfg.WorkdayStart, &cfg.LunchStart, &cfg.LunchEnd, &cfg.WorkdayEnd)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.DefaultScheduleConfig(), nil
	}
	if err != nil {
		return engine.ScheduleConfig{}, err
	}
	cfg.MorningEnabled = morningEnabled != 0
	cfg.AfternoonEnabled = afternoonEnabled != 0
	return cfg, nil
}

func (s *Store) SaveScheduleConfig(ctx context.Context, cfg engine.ScheduleConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO schedule_config
		(id, morning_enabled, morning_trigger_time, morning_hours_target,
		 afternoon_enabled, afternoon_trigger_time, afternoon_hours_target,
		 workday_start, lunch_start, lunch_end, workday_end)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		boolInt(cfg.MorningEnabled),
		cfg.MorningTriggerTime,
		cfg.MorningHoursTarget,
		boolInt(cfg.AfternoonEnabled),
		cfg.AfternoonTriggerTime,
		cfg.AfternoonHoursTarget,
		cfg.WorkdayStart,
		cfg.LunchStart,
		cfg.LunchEnd,
		cfg.WorkdayEnd,
	)
	return err
}

func (s *Store) GetRecentProjects(ctx context.Context, limit int) ([]engine.RecentProject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT project_id, project_name, ticket_number, last_used_at, use_count
		FROM recent_projects ORDER BY last_used_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recents []engine.RecentProject
	for rows.Next() {
		var (
			r          engine.RecentProject
			id         string
			lastUsedAt string
		)
		if err := rows.Scan(&id, &r.ProjectName, &r.TicketNumber, &lastUsedAt, &r.UseCount); err != nil {
			return nil, err
		}
		r.ProjectID = engine.ProjectID(id)
		r.LastUsedAt = parseTime(lastUsedAt)
		recents = append(recents, r)
	}
	return recents, rows.Err()
}

func (s *Store) TouchRecentProject(ctx context.Context, p engine.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recent_projects (project_id, project_name, ticket_number, last_used_at, use_count)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(project_id) DO UPDATE SET
			project_name = excluded.project_name,
			ticket_number = excluded.ticket_number,
			last_used_at = excluded.last_used_at,
			use_count = use_count + 1`,
		string(p.ID), p.Name, p.TicketNumber, now)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t
}

// interface guard
var _ engine.Store = (*Store)(nil)
