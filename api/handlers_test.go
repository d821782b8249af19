package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/api"
	"github.com/fmanzoor3/tiq-assistant/engine"
	memstore "github.com/fmanzoor3/tiq-assistant/engine/store"
	"github.com/fmanzoor3/tiq-assistant/export"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestAPI(t *testing.T) (*memstore.Memory, http.Handler) {
	t.Helper()
	mem := memstore.NewMemory()
	h := api.NewHandler(mem, nil, export.NewWriter(t.TempDir()), zap.NewNop())
	return mem, api.NewRouter(h)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func seedMeeting(t *testing.T, mem *memstore.Memory, subject string, start time.Time, minutes int) engine.Meeting {
	t.Helper()
	m := engine.Meeting{
		ID:        engine.MeetingID(engine.NewID()),
		Subject:   subject,
		Start:     start,
		End:       start.Add(time.Duration(minutes) * time.Minute),
		FetchedAt: time.Now().UTC(),
	}
	require.NoError(t, mem.SaveMeeting(context.Background(), m))
	return m
}

// =============================================================================
// PROJECT ENDPOINTS
// =============================================================================

func TestAPI_ProjectLifecycle(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]any{
		"name":          "Payroll Platform",
		"ticket_number": "T-1001",
		"issue_key":     "pemp-948",
		"keywords":      []string{"payroll"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "PEMP-948", created["issue_key"], "issue keys are normalized on write")
	id := created["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = doJSON(t, router, http.MethodDelete, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Deactivated projects drop out of the default listing.
	rec = doJSON(t, router, http.MethodGet, "/api/projects", nil)
	assert.Empty(t, decode[[]map[string]any](t, rec))

	rec = doJSON(t, router, http.MethodGet, "/api/projects?all=true", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}

func TestAPI_CreateProject_MissingName(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]any{
		"ticket_number": "T-1001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetProject_NotFound(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// ENTRY ENDPOINTS
// =============================================================================

func TestAPI_CreateEntry_AndAdvanceStatus(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
		"entry_date":  "2026-06-10",
		"hours":       2,
		"description": "architecture review",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[map[string]any](t, rec)
	assert.Equal(t, "draft", entry["status"])
	assert.Equal(t, "manual", entry["source"])
	id := entry["id"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/entries/"+id+"/status", map[string]any{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[map[string]any](t, rec)["status"])

	// The lifecycle only moves forward.
	rec = doJSON(t, router, http.MethodPut, "/api/entries/"+id+"/status", map[string]any{
		"status": "draft",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/entries/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "approved", decode[map[string]any](t, rec)["status"])
}

func TestAPI_CreateEntry_RejectsBadHours(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
		"entry_date":  "2026-06-10",
		"hours":       25,
		"description": "too much",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ListEntries_DateFilter(t *testing.T) {
	_, router := newTestAPI(t)

	for _, date := range []string{"2026-06-10", "2026-06-20"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
			"entry_date":  date,
			"hours":       1,
			"description": "work",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/entries?from=2026-06-15", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "2026-06-20", got[0]["entry_date"])
}

func TestAPI_AggregateEntries(t *testing.T) {
	// GIVEN: Two drafts for the same project and activity on one date
	// WHEN: Aggregating with dry_run, then for real
	// THEN: Dry run persists nothing; the real run collapses them

	mem, router := newTestAPI(t)

	for _, desc := range []string{"standup", "code review"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
			"entry_date":  "2026-06-10",
			"hours":       2,
			"description": desc,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/entries/aggregate", map[string]any{
		"date":    "2026-06-10",
		"dry_run": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, float64(2), resp["merged_from"])
	require.Len(t, resp["entries"], 1)

	stored, err := mem.GetEntries(context.Background(), engine.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 2, "dry run leaves the drafts alone")

	rec = doJSON(t, router, http.MethodPost, "/api/entries/aggregate", map[string]any{
		"date": "2026-06-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err = mem.GetEntries(context.Background(), engine.EntryFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 4, stored[0].Hours)
	assert.Equal(t, "standup; code review", stored[0].Description)
}

// deleteFailStore refuses deletes so replace failures can be observed.
type deleteFailStore struct {
	*memstore.Memory
}

func (s *deleteFailStore) DeleteEntry(context.Context, engine.EntryID) error {
	return errors.New("disk full")
}

func TestAPI_AggregateEntries_FailedReplaceKeepsDrafts(t *testing.T) {
	// GIVEN: A store that fails deletes mid-replace
	// WHEN: Aggregating two drafts
	// THEN: The request errors but no draft is lost

	mem := memstore.NewMemory()
	h := api.NewHandler(&deleteFailStore{Memory: mem}, nil, export.NewWriter(t.TempDir()), zap.NewNop())
	router := api.NewRouter(h)

	for _, desc := range []string{"standup", "code review"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
			"entry_date":  "2026-06-10",
			"hours":       2,
			"description": desc,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/entries/aggregate", map[string]any{
		"date": "2026-06-10",
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	stored, err := mem.GetEntries(context.Background(), engine.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 3, "both drafts survive alongside the merged row")
}

// =============================================================================
// MEETING ENDPOINTS
// =============================================================================

func TestAPI_SyncMeetings_NoSourceConfigured(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/meetings/sync", map[string]any{
		"from": "2026-06-10",
		"to":   "2026-06-10",
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAPI_ListMeetings_ByDate(t *testing.T) {
	mem, router := newTestAPI(t)

	seedMeeting(t, mem, "planning", time.Date(2026, time.June, 10, 10, 0, 0, 0, time.UTC), 60)
	seedMeeting(t, mem, "retro", time.Date(2026, time.June, 11, 10, 0, 0, 0, time.UTC), 30)

	rec := doJSON(t, router, http.MethodGet, "/api/meetings?date=2026-06-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]map[string]any](t, rec)
	require.Len(t, got, 1)
	assert.Equal(t, "planning", got[0]["subject"])
}

// =============================================================================
// RECONCILIATION
// =============================================================================

func TestAPI_Reconcile_DryRunThenPersist(t *testing.T) {
	// GIVEN: A matched meeting on the target date
	// WHEN: Reconciling with dry_run, then for real, then again
	// THEN: Dry run persists nothing; the real run imports once

	mem, router := newTestAPI(t)
	ctx := context.Background()

	rec := doJSON(t, router, http.MethodPost, "/api/projects", map[string]any{
		"name":          "Payroll Platform",
		"ticket_number": "T-1001",
		"issue_key":     "PEMP-948",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	meeting := seedMeeting(t, mem, "PEMP-948 sprint planning",
		time.Date(2026, time.June, 10, 10, 0, 0, 0, time.UTC), 90)

	// Dry run: entries come back but nothing is written.
	rec = doJSON(t, router, http.MethodPost, "/api/reconcile", map[string]any{
		"date":    "2026-06-10",
		"dry_run": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	require.Len(t, resp["entries"], 1)
	assert.Equal(t, true, resp["dry_run"])

	stored, err := mem.GetEntries(ctx, engine.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)

	// Real run: entry saved, meeting marked imported.
	rec = doJSON(t, router, http.MethodPost, "/api/reconcile", map[string]any{
		"date": "2026-06-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[map[string]any](t, rec)
	require.Len(t, resp["entries"], 1)
	entry := resp["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(2), entry["hours"], "90 minutes round up to 2")
	assert.Equal(t, "T-1001", entry["ticket_number"])

	got, err := mem.GetMeeting(ctx, meeting.ID)
	require.NoError(t, err)
	assert.True(t, got.Imported)

	// Second run finds nothing left to import.
	rec = doJSON(t, router, http.MethodPost, "/api/reconcile", map[string]any{
		"date": "2026-06-10",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[map[string]any](t, rec)
	assert.Empty(t, resp["entries"])

	stored, err = mem.GetEntries(ctx, engine.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestAPI_Reconcile_ReportsUnmatchedKeys(t *testing.T) {
	mem, router := newTestAPI(t)

	seedMeeting(t, mem, "ZZZ-9 triage",
		time.Date(2026, time.June, 10, 14, 0, 0, 0, time.UTC), 30)

	rec := doJSON(t, router, http.MethodPost, "/api/reconcile", map[string]any{
		"date":    "2026-06-10",
		"dry_run": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, []any{"ZZZ-9"}, resp["unmatched_keys"])
}

// =============================================================================
// DAY AND CALENDAR ENDPOINTS
// =============================================================================

func TestAPI_GetDaySummary(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
		"entry_date":  "2026-06-10",
		"hours":       2,
		"description": "morning work",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/days/2026-06-10", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[map[string]any](t, rec)
	assert.Equal(t, "workday", summary["day_class"])
	assert.Equal(t, float64(8), summary["expected_hours"])
	assert.Equal(t, float64(2), summary["total_hours"])
	assert.Equal(t, false, summary["complete"])

	morning := summary["morning"].(map[string]any)
	assert.Equal(t, float64(3), morning["target_hours"])
	assert.Equal(t, float64(2), morning["logged_hours"])
}

func TestAPI_GetDaySummary_BadDate(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/days/10.06.2026", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_GetMonth(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/calendar/2026/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	month := decode[map[string]any](t, rec)
	// No holidays loaded yet, so every weekday counts.
	assert.Equal(t, float64(22), month["expected_total_hours"].(float64)/8)

	rec = doJSON(t, router, http.MethodGet, "/api/calendar/2026/13", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

func TestAPI_Holidays_DefaultsAndClear(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/holidays/defaults", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[map[string]int](t, rec)
	assert.Equal(t, len(engine.DefaultHolidays()), saved["saved"])

	rec = doJSON(t, router, http.MethodGet, "/api/holidays?year=2026", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode[[]map[string]any](t, rec)
	assert.NotEmpty(t, listed)

	rec = doJSON(t, router, http.MethodDelete, "/api/holidays", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/holidays", nil)
	assert.Empty(t, decode[[]map[string]any](t, rec))
}

func TestAPI_SaveHolidays_Replace(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodPost, "/api/holidays", map[string]any{
		"holidays": []map[string]string{
			{"date": "2026-01-01", "name": "New Year", "type": "full_day"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/holidays", map[string]any{
		"holidays": []map[string]string{
			{"date": "2026-04-23", "name": "National Sovereignty Day"},
		},
		"replace": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/holidays", nil)
	listed := decode[[]map[string]any](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "2026-04-23", listed[0]["date"])
	assert.Equal(t, "full_day", listed[0]["type"], "omitted type defaults to a full day off")
}

// =============================================================================
// SETTINGS ENDPOINTS
// =============================================================================

func TestAPI_Settings_Roundtrip(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[map[string]any](t, rec)
	assert.Equal(t, "FMANZOOR", settings["consultant_id"])

	settings["consultant_id"] = "JDOE"
	rec = doJSON(t, router, http.MethodPut, "/api/settings", settings)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/settings", nil)
	assert.Equal(t, "JDOE", decode[map[string]any](t, rec)["consultant_id"])
}

func TestAPI_UpdateSettings_UnknownActivity(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/settings", nil)
	settings := decode[map[string]any](t, rec)
	settings["default_activity_code"] = "NOPE"

	rec = doJSON(t, router, http.MethodPut, "/api/settings", settings)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_UpdateSchedule_RejectsBadClock(t *testing.T) {
	_, router := newTestAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/settings/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	schedule := decode[map[string]any](t, rec)

	schedule["workday_start"] = "half past nine"
	rec = doJSON(t, router, http.MethodPut, "/api/settings/schedule", schedule)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// EXPORT
// =============================================================================

func TestAPI_ExportMonth_ApprovedOnly(t *testing.T) {
	// GIVEN: One approved and one draft entry in June
	// WHEN: Exporting the month
	// THEN: Only the approved entry lands in the file and gets stamped

	mem, router := newTestAPI(t)
	ctx := context.Background()

	var ids []string
	for i, status := range []string{"approved", "draft"} {
		rec := doJSON(t, router, http.MethodPost, "/api/entries", map[string]any{
			"entry_date":  fmt.Sprintf("2026-06-1%d", i),
			"hours":       2,
			"description": "work",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		id := decode[map[string]any](t, rec)["id"].(string)
		ids = append(ids, id)

		if status != "draft" {
			rec = doJSON(t, router, http.MethodPut, "/api/entries/"+id+"/status", map[string]any{
				"status": status,
			})
			require.Equal(t, http.StatusOK, rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/api/export", map[string]any{
		"year":  2026,
		"month": 6,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), resp["entries"])
	assert.Contains(t, resp["path"], "Timesheet_June_2026.xlsx")

	exported, err := mem.GetEntry(ctx, engine.EntryID(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, engine.StatusExported, exported.Status)

	draft, err := mem.GetEntry(ctx, engine.EntryID(ids[1]))
	require.NoError(t, err)
	assert.Equal(t, engine.StatusDraft, draft.Status)
}
