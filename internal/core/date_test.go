package core

import "testing"

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"01-15-2024", true},
		{"12-31-1999", true},
		{"02-30-2024", false},
		{"2024-01-15", false},
		{"15-01-2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tc.in, err)
			}
			if d.String() != tc.in {
				t.Fatalf("ParseDate(%q).String() = %q", tc.in, d.String())
			}
		} else if err == nil {
			t.Fatalf("ParseDate(%q) expected error", tc.in)
		}
	}
}

func TestDaysSince(t *testing.T) {
	start := NewDate(2024, 1, 1)
	if got := NewDate(2024, 1, 8).DaysSince(start); got != 7 {
		t.Errorf("DaysSince = %d, want 7", got)
	}
	if got := NewDate(2023, 12, 31).DaysSince(start); got != -1 {
		t.Errorf("DaysSince = %d, want -1", got)
	}
	// Spans a leap day.
	if got := NewDate(2024, 3, 1).DaysSince(NewDate(2024, 2, 1)); got != 29 {
		t.Errorf("DaysSince across Feb 2024 = %d, want 29", got)
	}
}

func TestIsLastDayOfMonth(t *testing.T) {
	cases := []struct {
		d    Date
		want bool
	}{
		{NewDate(2024, 1, 31), true},
		{NewDate(2024, 1, 30), false},
		{NewDate(2024, 2, 29), true},
		{NewDate(2023, 2, 28), true},
		{NewDate(2024, 4, 30), true},
		{NewDate(2024, 4, 29), false},
	}
	for _, tc := range cases {
		if got := tc.d.IsLastDayOfMonth(); got != tc.want {
			t.Errorf("IsLastDayOfMonth(%s) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	got := NewDate(2024, 1, 31).AddMonths(1)
	if got.String() != "02-29-2024" {
		t.Errorf("Jan 31 + 1 month = %s, want 02-29-2024", got)
	}
	got = NewDate(2023, 1, 31).AddMonths(1)
	if got.String() != "02-28-2023" {
		t.Errorf("Jan 31 + 1 month = %s, want 02-28-2023", got)
	}
	got = NewDate(2024, 3, 15).AddMonths(13)
	if got.String() != "04-15-2025" {
		t.Errorf("Mar 15 + 13 months = %s, want 04-15-2025", got)
	}
}

func TestCalendarDiff(t *testing.T) {
	cases := []struct {
		name                 string
		start, end           Date
		years, months, days  int
	}{
		{"same day", NewDate(2024, 1, 1), NewDate(2024, 1, 1), 0, 0, 0},
		{"plain days", NewDate(2024, 1, 1), NewDate(2024, 1, 15), 0, 0, 14},
		{"exact months", NewDate(2024, 1, 15), NewDate(2024, 4, 15), 0, 3, 0},
		{"borrowed days", NewDate(2024, 1, 15), NewDate(2024, 3, 10), 0, 1, 24},
		{"over a year", NewDate(2024, 1, 1), NewDate(2025, 3, 2), 1, 2, 1},
		{"end before start", NewDate(2024, 5, 1), NewDate(2024, 1, 1), 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y, m, d := CalendarDiff(tc.start, tc.end)
			if y != tc.years || m != tc.months || d != tc.days {
				t.Errorf("CalendarDiff = (%d, %d, %d), want (%d, %d, %d)",
					y, m, d, tc.years, tc.months, tc.days)
			}
		})
	}
}
