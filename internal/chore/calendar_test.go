package chore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWeekGrid(t *testing.T) {
	tests := []struct {
		month string
		first string
		rows  int
	}{
		{"2024-06-01", "2024-05-27", 5}, // starts on a Saturday
		{"2024-07-01", "2024-07-01", 5}, // starts on a Monday
		{"2021-02-01", "2021-02-01", 4}, // four full weeks
		{"2024-09-01", "2024-08-26", 6}, // Sunday start needs six rows
	}
	for _, tt := range tests {
		grid := WeekGrid(day(tt.month))
		if len(grid) != tt.rows {
			t.Errorf("%s: rows = %d, want %d", tt.month, len(grid), tt.rows)
		}
		if grid[0].String() != tt.first {
			t.Errorf("%s: first = %s, want %s", tt.month, grid[0], tt.first)
		}
	}
}

func TestProjectBuckets(t *testing.T) {
	done := time.Date(2024, time.June, 4, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: 1, Kind: Daily, Name: "Dishes", StartDate: day("2024-06-04")},
		{ID: 2, Kind: Weekly, Name: "Vacuum", StartDate: day("2024-06-03")},
		{ID: 3, Kind: Weekly, Name: "Vacuum", StartDate: day("2024-06-03")},
		{ID: 4, Kind: Weekly, Name: "Bins", StartDate: day("2024-06-03"), PlannedDate: day("2024-06-04")},
		{ID: 5, Kind: Monthly, Name: "Clean Room", StartDate: day("2024-06-01")},
		{ID: 6, Kind: Monthly, Name: "Clean Room", StartDate: day("2024-06-01")},
		{ID: 7, Kind: Monthly, Name: "Windows", StartDate: day("2024-06-01"), PlannedDate: day("2024-06-20")},
		{ID: 8, Kind: Monthly, Name: "Garage", StartDate: day("2024-06-01"), PlannedDate: day("2024-06-03"), CompletedAt: done},
		{ID: 9, Kind: Weekly, Name: "Laundry", StartDate: day("2024-06-10")},
		{ID: 10, Kind: Monthly, Name: "Car", StartDate: day("2024-06-01"), CompletedAt: done},
	}
	input := append([]Task(nil), tasks...)

	board := Project(input, day("2024-06-15"))

	if !board.Month.Equal(day("2024-06-01")) {
		t.Fatalf("month = %s", board.Month)
	}
	if len(board.Weeks) != 5 {
		t.Fatalf("weeks = %d", len(board.Weeks))
	}

	if len(board.UnscheduledMonthly) != 1 {
		t.Fatalf("monthly pool = %+v", board.UnscheduledMonthly)
	}
	group := board.UnscheduledMonthly[0]
	if group.Name != "Clean Room" || group.Top().ID != 5 || group.Badge(0) != 2 || group.Badge(5) != 1 {
		t.Fatalf("monthly group = %+v", group)
	}

	week2 := board.Weeks[1]
	if !week2.Start.Equal(day("2024-06-03")) {
		t.Fatalf("week 2 start = %s", week2.Start)
	}
	if len(week2.Unscheduled) != 1 || week2.Unscheduled[0].Name != "Vacuum" || len(week2.Unscheduled[0].Tasks) != 2 {
		t.Fatalf("week 2 pool = %+v", week2.Unscheduled)
	}
	if week3 := board.Weeks[2]; len(week3.Unscheduled) != 1 || week3.Unscheduled[0].Top().ID != 9 {
		t.Fatalf("week 3 pool = %+v", week3.Unscheduled)
	}

	cell, ok := board.Cell(day("2024-06-04"))
	if !ok {
		t.Fatalf("cell missing")
	}
	if ids := taskIDs(cell.Tasks); len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Fatalf("2024-06-04 tasks = %v", ids)
	}
	if cell, _ := board.Cell(day("2024-06-03")); len(cell.Tasks) != 1 || cell.Tasks[0].ID != 8 {
		t.Fatalf("completed planned task should still render on its day: %+v", cell.Tasks)
	}
	if cell, _ := board.Cell(day("2024-06-20")); len(cell.Tasks) != 1 || cell.Tasks[0].ID != 7 {
		t.Fatalf("2024-06-20 tasks = %+v", cell.Tasks)
	}
	if cell, _ := board.Cell(day("2024-05-31")); cell.InMonth {
		t.Fatalf("spillover day marked in month")
	}
	if _, ok := board.Cell(day("2024-07-15")); ok {
		t.Fatalf("day outside grid found")
	}

	for i := range tasks {
		if input[i] != tasks[i] {
			t.Fatalf("Project mutated task %d", tasks[i].ID)
		}
	}
}

func TestInvalidTargets(t *testing.T) {
	task := Task{ID: 1, Kind: Weekly, Name: "Vacuum", StartDate: day("2024-06-03")}
	board := Project([]Task{task}, day("2024-06-01"))
	valid := len(board.Days()) - len(board.InvalidTargets(task, []Task{task}))
	if valid != 7 {
		t.Fatalf("valid targets = %d, want 7", valid)
	}
}

func TestSummarize(t *testing.T) {
	at := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: 1, Kind: Daily, StartDate: day("2024-06-03"), CompletedAt: at, ReviewedAt: at, ReviewerID: 1, Value: decimal.RequireFromString("1.50")},
		{ID: 2, Kind: Daily, StartDate: day("2024-06-04"), CompletedAt: at, Value: decimal.RequireFromString("0.75")},
		{ID: 3, Kind: Daily, StartDate: day("2024-06-05"), Value: decimal.RequireFromString("0.25")},
		{ID: 4, Kind: Daily, StartDate: day("2024-06-20"), Value: decimal.RequireFromString("5")},
		{ID: 5, Kind: Daily, StartDate: day("2024-05-20"), Value: decimal.RequireFromString("9")},
	}
	s := Summarize(tasks, day("2024-06-01"), day("2024-06-10"), decimal.RequireFromString("10"))

	check := func(name string, got decimal.Decimal, want string) {
		t.Helper()
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("%s = %s, want %s", name, got, want)
		}
	}
	check("achieved", s.Achieved, "1.5")
	check("pending", s.PendingReview, "0.75")
	check("missed", s.Missed, "0.25")
	check("remaining", s.Remaining, "8.5")
}

func taskIDs(tasks []Task) []uint {
	ids := make([]uint, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
