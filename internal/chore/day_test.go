package chore

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-06-10", want: "2024-06-10"},
		{in: "2024-06-10T08:15:00Z", want: "2024-06-10"},
		{in: "2024-06-10 08:15:00", want: "2024-06-10"},
		{in: "", want: ""},
		{in: "10/06/2024", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDay(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDay(%q): %v", tt.in, err)
		}
		if got.String() != tt.want {
			t.Errorf("ParseDay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDayWeekBounds(t *testing.T) {
	tests := []struct {
		day, start, end string
	}{
		{"2024-06-03", "2024-06-03", "2024-06-09"}, // Monday
		{"2024-06-05", "2024-06-03", "2024-06-09"},
		{"2024-06-09", "2024-06-03", "2024-06-09"}, // Sunday
		{"2024-06-01", "2024-05-27", "2024-06-02"}, // Saturday spilling back into May
	}
	for _, tt := range tests {
		d := MustParseDay(tt.day)
		if got := d.WeekStart().String(); got != tt.start {
			t.Errorf("%s.WeekStart() = %s, want %s", tt.day, got, tt.start)
		}
		if got := d.WeekEnd().String(); got != tt.end {
			t.Errorf("%s.WeekEnd() = %s, want %s", tt.day, got, tt.end)
		}
	}
}

func TestDayMonthBounds(t *testing.T) {
	d := MustParseDay("2024-02-14")
	if got := d.MonthStart().String(); got != "2024-02-01" {
		t.Errorf("MonthStart = %s", got)
	}
	if got := d.MonthEnd().String(); got != "2024-02-29" {
		t.Errorf("MonthEnd = %s", got)
	}
	if got := MustParseDay("2024-12-31").AddMonths(1).String(); got != "2025-01-01" {
		t.Errorf("AddMonths across year = %s", got)
	}
	if got := d.MonthKey(); got != "2024-02" {
		t.Errorf("MonthKey = %s", got)
	}
}

func TestDayOfIgnoresClock(t *testing.T) {
	late := time.Date(2024, time.June, 10, 23, 59, 0, 0, time.Local)
	if got := DayOf(late).String(); got != "2024-06-10" {
		t.Errorf("DayOf = %s", got)
	}
	if !DayOf(time.Time{}).IsZero() {
		t.Errorf("DayOf(zero) should be zero")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"D": Daily, "w": Weekly, "Monthly": Monthly} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("Y"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}
