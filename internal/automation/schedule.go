// Package automation computes schedule timing and summarizes run outcomes
// for the dashboard inbox. It owns no persistence: the automation registry
// and run history live with external collaborators.
package automation

import (
	"fmt"
	"strings"
	"time"
)

// Schedule descriptor types.
const (
	ScheduleOnSession = "on_session"
	ScheduleDaily     = "daily"
	ScheduleWeekly    = "weekly"
	ScheduleMonthly   = "monthly"
	ScheduleInterval  = "interval"
)

// Schedule is the tagged timing descriptor of an automation. Day accepts a
// weekday name or a 0–6 numeric index (Sunday=0) since both appear in
// externally stored configuration.
type Schedule struct {
	Type  string `toml:"type" json:"type"`
	Hour  int    `toml:"hour" json:"hour,omitempty"`
	Day   any    `toml:"day" json:"day,omitempty"`
	Date  int    `toml:"date" json:"date,omitempty"`
	Hours int    `toml:"hours" json:"hours,omitempty"`
}

// Automation is a schedulable recurring task definition, owned by an
// external registry and read-only here.
type Automation struct {
	ID       string    `toml:"id" json:"id"`
	Enabled  bool      `toml:"enabled" json:"enabled"`
	Schedule *Schedule `toml:"schedule" json:"schedule,omitempty"`
}

// NextRun describes when an automation fires next: a concrete future time
// or a static recurrence phrase. A nil *NextRun means "never".
type NextRun struct {
	At     *time.Time `json:"at,omitempty"`
	Phrase string     `json:"phrase,omitempty"`
}

// CalculateNextRun computes the next firing of a relative to now.
// Disabled automations, missing schedules, and unknown schedule tags all
// yield nil rather than an error: this sits on a data path driven by
// externally stored configuration.
func CalculateNextRun(a *Automation, now time.Time) *NextRun {
	if a == nil || !a.Enabled || a.Schedule == nil {
		return nil
	}

	s := a.Schedule
	switch s.Type {
	case ScheduleOnSession:
		// Fires on each tool invocation; no calendar timing.
		return &NextRun{Phrase: "Every session"}

	case ScheduleDaily:
		next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, 0, 0, 0, now.Location())
		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return &NextRun{At: &next}

	case ScheduleWeekly:
		day, ok := parseWeekday(s.Day)
		if !ok {
			day = time.Sunday
		}
		next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, 0, 0, 0, now.Location())
		for next.Weekday() != day || !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}
		return &NextRun{At: &next}

	case ScheduleMonthly:
		next := monthlyAt(now.Year(), now.Month(), s.Date, s.Hour, now.Location())
		if !next.After(now) {
			next = monthlyAt(now.Year(), now.Month()+1, s.Date, s.Hour, now.Location())
		}
		return &NextRun{At: &next}

	case ScheduleInterval:
		hours := s.Hours
		if hours <= 0 {
			hours = 24
		}
		unit := "hours"
		if hours == 1 {
			unit = "hour"
		}
		return &NextRun{Phrase: fmt.Sprintf("Every %d %s", hours, unit)}

	default:
		return nil
	}
}

// monthlyAt builds the run time for a given month, clamping a nonexistent
// day-of-month to the month's last day (date 31 in a 30-day month runs on
// the 30th rather than skipping the month).
func monthlyAt(year int, month time.Month, date, hour int, loc *time.Location) time.Time {
	if date < 1 {
		date = 1
	}
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if date > last {
		date = last
	}
	return time.Date(year, month, date, hour, 0, 0, 0, loc)
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseWeekday accepts a weekday name (case-insensitive) or a numeric index
// 0–6 with Sunday=0. TOML and JSON decoders hand numbers over as int64 and
// float64 respectively.
func parseWeekday(v any) (time.Weekday, bool) {
	switch d := v.(type) {
	case string:
		w, ok := weekdayNames[strings.ToLower(strings.TrimSpace(d))]
		return w, ok
	case int:
		return numericWeekday(int64(d))
	case int64:
		return numericWeekday(d)
	case float64:
		return numericWeekday(int64(d))
	default:
		return 0, false
	}
}

func numericWeekday(n int64) (time.Weekday, bool) {
	if n < 0 || n > 6 {
		return 0, false
	}
	return time.Weekday(n), true
}
