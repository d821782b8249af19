/*
calendar.go - Workday classification against a holiday table

PURPOSE:
  WorkCalendar classifies any calendar date as weekend / full holiday /
  half-day holiday / workday and yields the expected-work-hours profile
  (0 / 4 / 8). It is a pure function of the holiday table plus the
  standard weekend rule; the weekend check always wins over the table.

TABLE SEMANTICS:
  Reload is a full replace of the lookup table, not a merge. Clear
  reverts to an empty table; whether to then fall back to the built-in
  default set is the caller's policy decision, not WorkCalendar's.

SEE ALSO:
  - types.go: Holiday, HolidayType
  - quota.go: consumes expected hours through the schedule config
*/
package engine

import (
	"fmt"
	"time"
)

// DayClass is the classification of a calendar date.
type DayClass string

const (
	ClassWorkday     DayClass = "workday"
	ClassFullHoliday DayClass = "full_holiday"
	ClassHalfHoliday DayClass = "half_holiday"
)

// Workday pairs a workday date with its expected hours.
type Workday struct {
	Date          Date
	ExpectedHours int
}

// WorkCalendar classifies dates against a holiday table. Construct with
// NewWorkCalendar and pass it around; there is no package-level instance.
type WorkCalendar struct {
	table map[Date]Holiday
}

// NewWorkCalendar builds a calendar from the given holiday set. A nil or
// empty set yields a calendar with only the weekend rule.
func NewWorkCalendar(holidays []Holiday) *WorkCalendar {
	c := &WorkCalendar{}
	c.Reload(holidays)
	return c
}

// Reload replaces the holiday table wholesale. Later records win on
// duplicate dates.
func (c *WorkCalendar) Reload(holidays []Holiday) {
	table := make(map[Date]Holiday, len(holidays))
	for _, h := range holidays {
		table[h.Date] = h
	}
	c.table = table
}

// Clear empties the holiday table.
func (c *WorkCalendar) Clear() {
	c.table = map[Date]Holiday{}
}

// Holiday returns the holiday record for a date, if any.
func (c *WorkCalendar) Holiday(d Date) (Holiday, bool) {
	h, ok := c.table[d]
	return h, ok
}

// Classify returns the day class for a date. Weekends are full holidays
// regardless of the table; a half-day record on a weekend date loses to
// the weekend check.
func (c *WorkCalendar) Classify(d Date) DayClass {
	if d.IsWeekend() {
		return ClassFullHoliday
	}
	if h, ok := c.table[d]; ok {
		if h.Type == HolidayHalfDay {
			return ClassHalfHoliday
		}
		return ClassFullHoliday
	}
	return ClassWorkday
}

// ExpectedHours returns 0 for weekends and full holidays, 4 for half-day
// holidays, 8 otherwise.
func (c *WorkCalendar) ExpectedHours(d Date) int {
	switch c.Classify(d) {
	case ClassFullHoliday:
		return 0
	case ClassHalfHoliday:
		return 4
	default:
		return 8
	}
}

// IsWorkday reports whether the date counts as a workday. Half-day
// holidays are workdays with reduced hours.
func (c *WorkCalendar) IsWorkday(d Date) bool {
	return c.Classify(d) != ClassFullHoliday
}

// WorkdaysInMonth returns every workday of the month, ascending, paired
// with its expected hours.
func (c *WorkCalendar) WorkdaysInMonth(year int, month time.Month) ([]Workday, error) {
	if err := validateYearMonth(year, month); err != nil {
		return nil, err
	}
	var workdays []Workday
	for day := 1; day <= DaysInMonth(year, month); day++ {
		d := NewDate(year, month, day)
		if c.IsWorkday(d) {
			workdays = append(workdays, Workday{Date: d, ExpectedHours: c.ExpectedHours(d)})
		}
	}
	return workdays, nil
}

// TotalExpectedHours sums the expected hours over the month's workdays.
func (c *WorkCalendar) TotalExpectedHours(year int, month time.Month) (int, error) {
	workdays, err := c.WorkdaysInMonth(year, month)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, wd := range workdays {
		total += wd.ExpectedHours
	}
	return total, nil
}

// HolidaysInRange returns the table's holidays within [from, to], ascending.
func (c *WorkCalendar) HolidaysInRange(from, to Date) []Holiday {
	var out []Holiday
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		if h, ok := c.table[d]; ok {
			out = append(out, h)
		}
	}
	return out
}

func validateYearMonth(year int, month time.Month) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("year %d out of range: %w", year, ErrInvalidDate)
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("month %d out of range: %w", month, ErrInvalidDate)
	}
	return nil
}

// DefaultHolidays returns the built-in 2026 Turkish national holiday set
// (Ulusal Bayram ve Genel Tatil Günleri). Only official holidays; arife
// days are half-day.
func DefaultHolidays() []Holiday {
	full := func(m time.Month, d int, name string) Holiday {
		return Holiday{Date: NewDate(2026, m, d), Name: name, Type: HolidayFullDay}
	}
	half := func(m time.Month, d int, name string) Holiday {
		return Holiday{Date: NewDate(2026, m, d), Name: name, Type: HolidayHalfDay}
	}
	return []Holiday{
		full(time.January, 1, "Yılbaşı"),

		half(time.March, 19, "Ramazan Bayramı Arifesi"),
		full(time.March, 20, "Ramazan Bayramı 1. Gün"),
		full(time.March, 21, "Ramazan Bayramı 2. Gün"),
		full(time.March, 22, "Ramazan Bayramı 3. Gün"),

		full(time.April, 23, "Ulusal Egemenlik ve Çocuk Bayramı"),
		full(time.May, 1, "Emek ve Dayanışma Günü"),
		full(time.May, 19, "Atatürk'ü Anma, Gençlik ve Spor Bayramı"),

		half(time.May, 25, "Kurban Bayramı Arifesi"),
		full(time.May, 26, "Kurban Bayramı 1. Gün"),
		full(time.May, 27, "Kurban Bayramı 2. Gün"),
		full(time.May, 28, "Kurban Bayramı 3. Gün"),
		full(time.May, 29, "Kurban Bayramı 4. Gün"),
		full(time.May, 30, "Kurban Bayramı 5. Gün"),

		full(time.July, 15, "Demokrasi ve Milli Birlik Günü"),
		full(time.August, 30, "Zafer Bayramı"),

		half(time.October, 28, "Cumhuriyet Bayramı Arifesi"),
		full(time.October, 29, "Cumhuriyet Bayramı"),
	}
}
