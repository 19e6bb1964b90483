// Package chore holds the scheduling rules of the chore board: task windows,
// disposition, drop validation, the mutation engine and the calendar projection.
package chore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind selects which date window rule applies to a task.
type Kind int

const (
	Daily Kind = iota
	Weekly
	Monthly
)

// ParseKind accepts the persisted one-letter codes (D, W, M) as well as full names.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D", "DAILY":
		return Daily, nil
	case "W", "WEEKLY":
		return Weekly, nil
	case "M", "MONTHLY":
		return Monthly, nil
	default:
		return 0, fmt.Errorf("unknown task type %q", s)
	}
}

// Code is the persisted one-letter form.
func (k Kind) Code() string {
	switch k {
	case Weekly:
		return "W"
	case Monthly:
		return "M"
	default:
		return "D"
	}
}

func (k Kind) String() string {
	switch k {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return "daily"
	}
}

// Task is one occurrence of a chore.
type Task struct {
	ID          uint
	Kind        Kind
	Name        string
	AssigneeID  uint
	StartDate   Day
	PlannedDate Day
	CompletedAt time.Time
	ReviewedAt  time.Time
	ReviewerID  uint
	// ReviewerName is display-only.
	ReviewerName string
	Value        decimal.Decimal
}

// Planned reports whether the task sits on a calendar day rather than in a pool.
func (t Task) Planned() bool { return !t.PlannedDate.IsZero() }

func (t Task) Completed() bool { return !t.CompletedAt.IsZero() }

func (t Task) Reviewed() bool { return !t.ReviewedAt.IsZero() }

// Locked tasks have been approved and accept no further changes.
func (t Task) Locked() bool { return t.Reviewed() }

// WeekWindow is the Monday-start week containing the start date.
func (t Task) WeekWindow() Window {
	start := t.StartDate.WeekStart()
	return Window{Start: start, End: start.AddDays(6)}
}

// MonthWindow is the calendar month containing the start date.
func (t Task) MonthWindow() Window {
	return Window{Start: t.StartDate.MonthStart(), End: t.StartDate.MonthEnd()}
}

// Window returns the days the task may legally occupy.
func (t Task) Window() Window {
	switch t.Kind {
	case Weekly:
		return t.WeekWindow()
	case Monthly:
		return t.MonthWindow()
	default:
		return Window{Start: t.StartDate, End: t.StartDate}
	}
}

// Slot is the day the task renders on, or the zero Day when it is in a pool.
func (t Task) Slot() Day {
	if t.Kind == Daily {
		return t.StartDate
	}
	return t.PlannedDate
}

func (t Task) String() string {
	return fmt.Sprintf("%s#%d(%s %s)", t.Kind, t.ID, t.Name, t.StartDate)
}

func findTask(tasks []Task, id uint) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
