/*
scheduler.go - Session reminder scheduler

PURPOSE:
  Watches the clock and fires a reminder when a session's trigger time
  passes on a workday with hours still missing. The reminder carries
  the session standing so the operator sees how much is left to log.

DESIGN:
  - Runs a background goroutine with a one-minute tick
  - A session fires at most once per day
  - Weekends and full holidays never fire; half holidays only fire the
    morning session
  - Reminders go to the Notify callback (default: structured log)

USAGE:
  scheduler := NewReminderScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - engine/quota.go: Session standing computation
  - handlers.go: The same data over HTTP
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/engine"
)

// Reminder is one fired session notification.
type Reminder struct {
	Date    engine.Date
	Session engine.Session
	Info    engine.SessionInfo
}

// ReminderScheduler fires session reminders at the configured trigger
// times.
type ReminderScheduler struct {
	Store        engine.Store
	Log          *zap.Logger
	TickInterval time.Duration

	// Notify receives fired reminders. Defaults to logging.
	Notify func(Reminder)

	tracker engine.QuotaTracker
	fired   map[string]bool // "<date>/<session>"
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(store engine.Store, log *zap.Logger) *ReminderScheduler {
	rs := &ReminderScheduler{
		Store:        store,
		Log:          log,
		TickInterval: time.Minute,
		fired:        make(map[string]bool),
		stop:         make(chan struct{}),
	}
	rs.Notify = func(rem Reminder) {
		log.Info("session reminder",
			zap.String("date", rem.Date.String()),
			zap.String("session", string(rem.Session)),
			zap.Int("logged", rem.Info.LoggedHours),
			zap.Int("target", rem.Info.TargetHours),
			zap.Int("remaining", rem.Info.RemainingHours))
	}
	return rs
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ticker = time.NewTicker(rs.TickInterval)
	rs.wg.Add(1)
	go rs.run()

	rs.Log.Info("reminder scheduler started", zap.Duration("tick", rs.TickInterval))
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.Log.Info("reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	for {
		select {
		case <-rs.ticker.C:
			rs.check(time.Now())
		case <-rs.stop:
			return
		}
	}
}

// check fires any session whose trigger time has passed today.
func (rs *ReminderScheduler) check(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d := engine.DateOf(now)

	cfg, err := rs.Store.GetScheduleConfig(ctx)
	if err != nil {
		rs.Log.Warn("reminder check: loading schedule failed", zap.Error(err))
		return
	}
	holidays, err := rs.Store.GetHolidays(ctx, d.Year())
	if err != nil {
		rs.Log.Warn("reminder check: loading holidays failed", zap.Error(err))
		return
	}

	calendar := engine.NewWorkCalendar(holidays)
	class := calendar.Classify(d)
	if class == engine.ClassFullHoliday {
		return
	}

	sessions := []struct {
		session engine.Session
		enabled bool
		trigger string
	}{
		{engine.SessionMorning, cfg.MorningEnabled, cfg.MorningTriggerTime},
		{engine.SessionAfternoon, cfg.AfternoonEnabled, cfg.AfternoonTriggerTime},
	}

	for _, s := range sessions {
		if !s.enabled {
			continue
		}
		// Half holidays only have a morning session.
		if class == engine.ClassHalfHoliday && s.session == engine.SessionAfternoon {
			continue
		}

		trigger, err := engine.ParseClock(s.trigger)
		if err != nil {
			rs.Log.Warn("reminder check: bad trigger time",
				zap.String("session", string(s.session)), zap.Error(err))
			continue
		}
		if engine.ClockOf(now) < trigger {
			continue
		}

		key := d.String() + "/" + string(s.session)
		rs.mu.Lock()
		alreadyFired := rs.fired[key]
		rs.mu.Unlock()
		if alreadyFired {
			continue
		}

		rs.fire(ctx, d, s.session, cfg, key)
	}
}

func (rs *ReminderScheduler) fire(ctx context.Context, d engine.Date, session engine.Session, cfg engine.ScheduleConfig, key string) {
	entries, err := rs.Store.GetEntries(ctx, engine.EntryFilter{From: &d, To: &d})
	if err != nil {
		rs.Log.Warn("reminder check: loading entries failed", zap.Error(err))
		return
	}
	meetings, err := rs.Store.GetMeetingsForDate(ctx, d)
	if err != nil {
		rs.Log.Warn("reminder check: loading meetings failed", zap.Error(err))
		return
	}

	info, err := rs.tracker.SessionInfo(d, session, cfg, entries, meetings)
	if err != nil {
		rs.Log.Warn("reminder check: session standing failed", zap.Error(err))
		return
	}

	rs.mu.Lock()
	rs.fired[key] = true
	// Keep the map from growing unbounded across days.
	for k := range rs.fired {
		if len(k) >= 10 && k[:10] != d.String() {
			delete(rs.fired, k)
		}
	}
	rs.mu.Unlock()

	if info.RemainingHours <= 0 {
		return
	}
	rs.Notify(Reminder{Date: d, Session: session, Info: info})
}

// RunNow triggers an immediate check (for testing/admin).
func (rs *ReminderScheduler) RunNow() {
	rs.check(time.Now())
}
