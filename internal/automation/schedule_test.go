package automation

import (
	"testing"
	"time"
)

func enabled(s *Schedule) *Automation {
	return &Automation{ID: "auto-1", Enabled: true, Schedule: s}
}

func TestCalculateNextRun_DisabledOrMissing(t *testing.T) {
	now := time.Now()

	if got := CalculateNextRun(nil, now); got != nil {
		t.Errorf("nil automation: expected nil, got %+v", got)
	}
	if got := CalculateNextRun(&Automation{ID: "a", Enabled: false, Schedule: &Schedule{Type: ScheduleDaily}}, now); got != nil {
		t.Errorf("disabled: expected nil, got %+v", got)
	}
	if got := CalculateNextRun(&Automation{ID: "a", Enabled: true}, now); got != nil {
		t.Errorf("missing schedule: expected nil, got %+v", got)
	}
	if got := CalculateNextRun(enabled(&Schedule{Type: "fortnightly"}), now); got != nil {
		t.Errorf("unknown tag: expected nil, got %+v", got)
	}
}

func TestCalculateNextRun_OnSession(t *testing.T) {
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleOnSession}), time.Now())
	if got == nil || got.Phrase != "Every session" {
		t.Fatalf("expected phrase Every session, got %+v", got)
	}
	if got.At != nil {
		t.Error("on_session must not carry a timestamp")
	}
}

func TestCalculateNextRun_DailyBeforeHour(t *testing.T) {
	now := time.Date(2026, 3, 10, 7, 30, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleDaily, Hour: 9}), now)

	want := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected %v, got %+v", want, got)
	}
}

func TestCalculateNextRun_DailyAfterHour(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 1, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleDaily, Hour: 9}), now)

	want := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected tomorrow %v, got %+v", want, got)
	}
}

func TestCalculateNextRun_DailyDefaultsMidnight(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleDaily}), now)

	want := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected midnight tomorrow, got %+v", got)
	}
}

func TestCalculateNextRun_WeeklyByName(t *testing.T) {
	// 2026-03-10 is a Tuesday.
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleWeekly, Day: "friday", Hour: 14}), now)

	want := time.Date(2026, 3, 13, 14, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected Friday %v, got %+v", want, got)
	}
	if got.At.Weekday() != time.Friday {
		t.Errorf("expected a Friday, got %v", got.At.Weekday())
	}
}

func TestCalculateNextRun_WeeklyNumericIndex(t *testing.T) {
	// Sunday=0; int64 mimics a TOML-decoded number.
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) // Tuesday
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleWeekly, Day: int64(0), Hour: 8}), now)

	want := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected Sunday %v, got %+v", want, got)
	}
}

func TestCalculateNextRun_WeeklySameDayLaterHour(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC) // Tuesday
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleWeekly, Day: "tuesday", Hour: 18}), now)

	want := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected later today, got %+v", got)
	}
}

func TestCalculateNextRun_WeeklySameDayPastHourRollsAWeek(t *testing.T) {
	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC) // Tuesday evening
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleWeekly, Day: "tuesday", Hour: 18}), now)

	want := time.Date(2026, 3, 17, 18, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected next Tuesday, got %+v", got)
	}
}

func TestCalculateNextRun_MonthlyUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleMonthly, Date: 15, Hour: 6}), now)

	want := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected %v, got %+v", want, got)
	}
}

func TestCalculateNextRun_MonthlyRollsToNextMonth(t *testing.T) {
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleMonthly, Date: 15}), now)

	want := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected next month, got %+v", got)
	}
}

func TestCalculateNextRun_MonthlyClampsShortMonth(t *testing.T) {
	// Date 31 in April (30 days) clamps to the 30th.
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	got := CalculateNextRun(enabled(&Schedule{Type: ScheduleMonthly, Date: 31, Hour: 12}), now)

	want := time.Date(2026, 4, 30, 12, 0, 0, 0, time.UTC)
	if got == nil || got.At == nil || !got.At.Equal(want) {
		t.Fatalf("expected clamp to April 30, got %+v", got)
	}
}

func TestCalculateNextRun_Interval(t *testing.T) {
	now := time.Now()

	tests := []struct {
		hours int
		want  string
	}{
		{1, "Every 1 hour"},
		{6, "Every 6 hours"},
		{0, "Every 24 hours"}, // default
	}
	for _, tt := range tests {
		s := &Schedule{Type: ScheduleInterval}
		if tt.hours > 0 {
			s.Hours = tt.hours
		}
		got := CalculateNextRun(enabled(s), now)
		if got == nil || got.Phrase != tt.want {
			t.Errorf("hours=%d: expected %q, got %+v", tt.hours, tt.want, got)
		}
	}
}

func TestCalculateNextRun_AlwaysStrictlyFuture(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	schedules := []*Schedule{
		{Type: ScheduleDaily, Hour: 9},
		{Type: ScheduleWeekly, Day: "tuesday", Hour: 9}, // now is Tuesday 09:00
		{Type: ScheduleMonthly, Date: 10, Hour: 9},
	}
	for _, s := range schedules {
		got := CalculateNextRun(enabled(s), now)
		if got == nil || got.At == nil {
			t.Fatalf("%s: expected a timestamp, got %+v", s.Type, got)
		}
		if !got.At.After(now) {
			t.Errorf("%s: next run %v is not strictly after %v", s.Type, got.At, now)
		}
	}
}
