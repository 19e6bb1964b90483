package chore

import (
	"fmt"
	"time"
)

// DayLayout is the wire format of a calendar day.
const DayLayout = "2006-01-02"

// Day is a local calendar day without a time zone. The zero value means "unset".
type Day struct {
	t time.Time // midnight UTC
}

// NewDay builds a Day, normalizing overflowing values the way time.Date does.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	if t.IsZero() {
		return Day{}
	}
	y, m, d := t.Date()
	return NewDay(y, m, d)
}

// Today returns the current local calendar day.
func Today() Day {
	return DayOf(time.Now())
}

// ParseDay parses a YYYY-MM-DD string. An empty string yields the zero Day.
func ParseDay(s string) (Day, error) {
	if s == "" {
		return Day{}, nil
	}
	if len(s) > len(DayLayout) {
		// tolerate timestamps like 2024-06-10T00:00:00Z or "2024-06-10 08:15:00"
		s = s[:len(DayLayout)]
	}
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// MustParseDay is ParseDay for literals known to be valid.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.t.IsZero() }

func (d Day) Year() int { return d.t.Year() }

func (d Day) Month() time.Month { return d.t.Month() }

func (d Day) Day() int { return d.t.Day() }

func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DayLayout)
}

// Format formats the day with a time layout.
func (d Day) Format(layout string) string { return d.t.Format(layout) }

// In returns midnight of the day in loc.
func (d Day) In(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

func (d Day) Before(o Day) bool { return d.t.Before(o.t) }

func (d Day) After(o Day) bool { return d.t.After(o.t) }

func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

func (d Day) AddMonths(n int) Day {
	return NewDay(d.Year(), d.Month()+time.Month(n), 1)
}

// Between reports whether d lies in [from, to] inclusive.
func (d Day) Between(from, to Day) bool {
	return !d.Before(from) && !d.After(to)
}

// SameMonth reports whether both days are in the same month of the same year.
func (d Day) SameMonth(o Day) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// WeekStart returns the Monday of d's week.
func (d Day) WeekStart() Day {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// WeekEnd returns the Sunday of d's week.
func (d Day) WeekEnd() Day { return d.WeekStart().AddDays(6) }

func (d Day) MonthStart() Day { return NewDay(d.Year(), d.Month(), 1) }

func (d Day) MonthEnd() Day { return d.MonthStart().AddMonths(1).AddDays(-1) }

// MonthKey renders the day's month as YYYY-MM.
func (d Day) MonthKey() string { return d.t.Format("2006-01") }

// ParseMonth parses a YYYY-MM month key into the first day of that month.
func ParseMonth(s string) (Day, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Day{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// Window is an inclusive range of days.
type Window struct {
	Start Day
	End   Day
}

// Contains reports whether d lies inside the window.
func (w Window) Contains(d Day) bool { return d.Between(w.Start, w.End) }
