package outlook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// Source adapts the Graph client to engine.CalendarSource. Fetched
// meetings are cached through the meeting store so that the imported
// marker survives refetches.
type Source struct {
	client   *Client
	meetings engine.MeetingStore
	log      *zap.Logger
}

// NewSource wires a Graph client to a meeting store.
func NewSource(client *Client, meetings engine.MeetingStore, log *zap.Logger) *Source {
	return &Source{client: client, meetings: meetings, log: log}
}

// Available probes the Graph API with a tiny calendarView request.
func (s *Source) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	_, err := s.client.getCalendarView(probeCtx, now, now.Add(time.Minute))
	if err != nil {
		s.log.Debug("calendar source unavailable", zap.Error(err))
		return false
	}
	return true
}

// GetMeetingsForRange fetches [from, to] (inclusive dates), maps the
// events, persists them, and returns the mapped meetings. All-day
// events and occurrences that cannot be parsed are skipped.
func (s *Source) GetMeetingsForRange(ctx context.Context, from, to engine.Date) ([]engine.Meeting, error) {
	events, err := s.client.getCalendarView(ctx, from.Time(), to.AddDays(1).Time())
	if err != nil {
		return nil, &engine.UpstreamError{Op: "calendarView", Err: err}
	}

	now := time.Now()
	var meetings []engine.Meeting
	for _, ev := range events {
		if ev.IsAllDay || ev.IsCancelled {
			continue
		}
		m, err := s.mapEvent(ev, now)
		if err != nil {
			s.log.Warn("skipping unparseable event",
				zap.String("subject", ev.Subject), zap.Error(err))
			continue
		}

		// Keep the imported marker across refetches.
		if prev, err := s.meetings.GetMeeting(ctx, m.ID); err == nil {
			m.Imported = prev.Imported
			m.ImportedEntryID = prev.ImportedEntryID
			m.MatchedProjectID = prev.MatchedProjectID
			m.MatchedIssueKey = prev.MatchedIssueKey
			m.MatchConfidence = prev.MatchConfidence
		} else if !errors.Is(err, engine.ErrNotFound) {
			return nil, err
		}

		if err := s.meetings.SaveMeeting(ctx, m); err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}

	s.log.Info("calendar sync complete",
		zap.Int("fetched", len(events)),
		zap.Int("stored", len(meetings)),
		zap.String("from", from.String()),
		zap.String("to", to.String()))
	return meetings, nil
}

func (s *Source) mapEvent(ev graphEvent, fetchedAt time.Time) (engine.Meeting, error) {
	start, err := parseGraphTime(ev.Start.DateTime, ev.Start.TimeZone)
	if err != nil {
		return engine.Meeting{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(ev.End.DateTime, ev.End.TimeZone)
	if err != nil {
		return engine.Meeting{}, fmt.Errorf("parsing end time: %w", err)
	}
	return engine.Meeting{
		ID:           engine.MeetingID(ev.ID),
		Subject:      ev.Subject,
		Start:        start,
		End:          end,
		TeamsMeeting: ev.IsOnline,
		Recurring:    ev.Type == "occurrence" || ev.Type == "exception",
		Organizer:    ev.Organizer.EmailAddress.Name,
		Location:     ev.Location.DisplayName,
		Body:         ev.BodyPreview,
		FetchedAt:    fetchedAt,
	}, nil
}

// parseGraphTime parses a Graph dateTime string. With a Prefer:
// outlook.timezone header Graph returns "2026-02-27T09:00:00.0000000"
// without a zone suffix, so the event's TimeZone field decides the
// location.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, dt); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" && tz != "UTC" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

var _ engine.CalendarSource = (*Source)(nil)
