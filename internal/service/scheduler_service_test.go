package service

import (
	"testing"
	"time"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"19:00", "0 0 19 * * *", true},
		{"7:05", "0 5 7 * * *", true},
		{" 00:59 ", "0 59 0 * * *", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"noon", "", false},
		{"12", "", false},
	}
	for _, tt := range tests {
		got, err := buildDailySpec(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("%q: err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q: got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s := NewSchedulerService(time.UTC)
	if _, err := s.ScheduleInterval("retry", 0, func() {}); err == nil {
		t.Fatalf("zero interval accepted")
	}
	if _, err := s.ScheduleDaily("report", "25:00", func() {}); err == nil {
		t.Fatalf("bad clock accepted")
	}

	daily, err := s.ScheduleDaily("report", "19:00", func() {})
	if err != nil {
		t.Fatalf("daily: %v", err)
	}
	if _, err := s.ScheduleInterval("retry", 1500*time.Millisecond, func() {}); err != nil {
		t.Fatalf("interval: %v", err)
	}

	s.Start()
	defer s.Stop()
	next := s.Next(daily)
	if next.IsZero() || next.Hour() != 19 || next.Minute() != 0 {
		t.Fatalf("next = %s", next)
	}
}
