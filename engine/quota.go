/*
quota.go - Morning/afternoon session quota tracking

PURPOSE:
  QuotaTracker computes how a day's sessions stand against their hour
  targets: hours already logged, hours sitting in unimported meetings,
  hours remaining, and a suggested hour count for the next entry.

INPUTS:
  Stateless. The caller supplies the schedule configuration plus the
  entries and meetings already recorded for the date; nothing is looked
  up behind the caller's back.

KNOWN LIMITATION:
  Entries carry no intrinsic time of day, so LoggedHours counts all of
  the day's entries for both sessions. This reproduces the reference
  behavior on purpose; see the session attribution note in DESIGN.md.
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// SessionInfo is the quota standing of one session.
type SessionInfo struct {
	Session             Session
	TargetHours         int
	LoggedHours         int
	PendingMeetingHours int
	RemainingHours      int
	WindowStart         ClockTime
	WindowEnd           ClockTime
}

// DaySummary concatenates both sessions of a date.
type DaySummary struct {
	Date        Date
	Morning     SessionInfo
	Afternoon   SessionInfo
	TotalHours  int
	TotalTarget int
	Complete    bool
}

// QuotaTracker computes session quota standings. Zero value is ready to use.
type QuotaTracker struct{}

// SessionWindow resolves the session's half-open time window from the
// schedule: morning is [workday start, lunch start), afternoon is
// [lunch end, workday end).
func SessionWindow(cfg ScheduleConfig, session Session) (start, end ClockTime, err error) {
	if err := cfg.Validate(); err != nil {
		return 0, 0, err
	}
	if session == SessionMorning {
		start, _ = ParseClock(cfg.WorkdayStart)
		end, _ = ParseClock(cfg.LunchStart)
	} else {
		start, _ = ParseClock(cfg.LunchEnd)
		end, _ = ParseClock(cfg.WorkdayEnd)
	}
	return start, end, nil
}

// SessionInfo computes the quota standing for one session of a date.
// entries and meetings are the records already stored for that date.
func (QuotaTracker) SessionInfo(d Date, session Session, cfg ScheduleConfig, entries []TimesheetEntry, meetings []Meeting) (SessionInfo, error) {
	start, end, err := SessionWindow(cfg, session)
	if err != nil {
		return SessionInfo{}, err
	}

	target := cfg.MorningHoursTarget
	if session == SessionAfternoon {
		target = cfg.AfternoonHoursTarget
	}

	// Entries have no time of day; every entry of the date counts.
	logged := 0
	for _, e := range entries {
		if e.EntryDate.Equal(d) {
			logged += e.Hours
		}
	}

	// Meetings count toward the session they start in, once each, until
	// they have been imported.
	pending := 0
	for _, m := range meetings {
		if m.Imported {
			continue
		}
		clock := ClockOf(m.Start)
		if clock >= start && clock < end {
			pending += RoundHours(m.DurationHours())
		}
	}

	remaining := target - logged
	if remaining < 0 {
		remaining = 0
	}

	return SessionInfo{
		Session:             session,
		TargetHours:         target,
		LoggedHours:         logged,
		PendingMeetingHours: pending,
		RemainingHours:      remaining,
		WindowStart:         start,
		WindowEnd:           end,
	}, nil
}

// SuggestHours proposes the hour count for a new entry: fill the gap left
// after the unimported meetings, never more than what remains, never less
// than 1.
func (q QuotaTracker) SuggestHours(d Date, session Session, cfg ScheduleConfig, entries []TimesheetEntry, meetings []Meeting) (int, error) {
	info, err := q.SessionInfo(d, session, cfg, entries, meetings)
	if err != nil {
		return 0, err
	}
	available := info.RemainingHours - info.PendingMeetingHours
	if available > info.RemainingHours {
		available = info.RemainingHours
	}
	if available < 1 {
		available = 1
	}
	return available, nil
}

// DaySummary combines both sessions. Complete means the day's logged
// hours meet the combined target.
func (q QuotaTracker) DaySummary(d Date, cfg ScheduleConfig, entries []TimesheetEntry, meetings []Meeting) (DaySummary, error) {
	morning, err := q.SessionInfo(d, SessionMorning, cfg, entries, meetings)
	if err != nil {
		return DaySummary{}, err
	}
	afternoon, err := q.SessionInfo(d, SessionAfternoon, cfg, entries, meetings)
	if err != nil {
		return DaySummary{}, err
	}

	// Each session reports all of the day's entries as logged; the day
	// total counts them once.
	total := 0
	for _, e := range entries {
		if e.EntryDate.Equal(d) {
			total += e.Hours
		}
	}
	target := morning.TargetHours + afternoon.TargetHours

	return DaySummary{
		Date:        d,
		Morning:     morning,
		Afternoon:   afternoon,
		TotalHours:  total,
		TotalTarget: target,
		Complete:    total >= target,
	}, nil
}

// RoundHours rounds decimal hours to the nearest integer, ties to even,
// with a floor of 1: a ten-minute meeting still consumes a full hour of
// budget, and a 150-minute one claims 2 hours, not 3.
func RoundHours(hours decimal.Decimal) int {
	rounded := int(hours.RoundBank(0).IntPart())
	if rounded < 1 {
		return 1
	}
	return rounded
}
