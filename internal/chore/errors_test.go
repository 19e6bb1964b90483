package chore

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestIsRejection(t *testing.T) {
	for _, err := range []error{
		ErrLocked, ErrCompleted, ErrNotCompleted, ErrNotPlanned, ErrFutureDate,
		ErrWrongDay, ErrMissed, ErrDropRejected, ErrDailyNotPlannable, ErrNoReviewer,
		fmt.Errorf("plan task 3: %w", ErrLocked),
	} {
		if !IsRejection(err) {
			t.Errorf("IsRejection(%v) = false", err)
		}
	}
	for _, err := range []error{nil, ErrTaskNotFound, errors.New("store unavailable")} {
		if IsRejection(err) {
			t.Errorf("IsRejection(%v) = true", err)
		}
	}
}

func TestReviewedTaskReportsLocked(t *testing.T) {
	done := time.Date(2024, time.June, 2, 9, 0, 0, 0, time.UTC)
	task := Task{
		ID: 1, Kind: Monthly, Name: "Windows", StartDate: day("2024-06-01"), PlannedDate: day("2024-06-02"),
		CompletedAt: done, ReviewedAt: done, ReviewerID: 5,
	}
	e, _ := newTestEngine(t, "2024-06-03", []Task{task})
	if _, err := e.Approve(1, 5, time.Time{}); !errors.Is(err, ErrLocked) {
		t.Fatalf("approve reviewed: %v", err)
	}
}
