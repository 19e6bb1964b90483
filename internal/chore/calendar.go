package chore

// Group collapses same-named tasks of one pool into a single visible chip.
type Group struct {
	Name  string
	Tasks []Task
}

// Top is the task rendered for the group.
func (g Group) Top() Task { return g.Tasks[0] }

// Badge is the count shown next to the chip. While the top task is being
// dragged it no longer counts.
func (g Group) Badge(activeID uint) int {
	if activeID != 0 && g.Top().ID == activeID {
		return len(g.Tasks) - 1
	}
	return len(g.Tasks)
}

// Cell is one day of the grid.
type Cell struct {
	Day     Day
	InMonth bool
	Tasks   []Task
}

// Week is one Monday-start row of the grid.
type Week struct {
	Start       Day
	Days        [7]Cell
	Unscheduled []Group
}

func (w Week) End() Day { return w.Start.AddDays(6) }

// Board is the render-ready projection of a month.
type Board struct {
	Month              Day
	Weeks              []Week
	UnscheduledMonthly []Group
}

// Cell returns the grid cell for day, if the day is displayed.
func (b Board) Cell(day Day) (Cell, bool) {
	for _, w := range b.Weeks {
		if day.Before(w.Start) || day.After(w.End()) {
			continue
		}
		return w.Days[(int(day.Weekday())+6)%7], true
	}
	return Cell{}, false
}

// Days lists every displayed day, spillover included.
func (b Board) Days() []Day {
	days := make([]Day, 0, len(b.Weeks)*7)
	for _, w := range b.Weeks {
		for _, c := range w.Days {
			days = append(days, c.Day)
		}
	}
	return days
}

// InvalidTargets lists the displayed days that would reject a drop of task.
func (b Board) InvalidTargets(task Task, all []Task) []Day {
	var out []Day
	for _, d := range b.Days() {
		if !IsDropAllowed(task, d, all) {
			out = append(out, d)
		}
	}
	return out
}

// WeekGrid returns the Monday of every row needed to show month in full.
func WeekGrid(month Day) []Day {
	var starts []Day
	end := month.MonthEnd()
	for ws := month.MonthStart().WeekStart(); !ws.After(end); ws = ws.AddDays(7) {
		starts = append(starts, ws)
	}
	return starts
}

// Project buckets tasks into the grid for month without touching them.
func Project(tasks []Task, month Day) Board {
	month = month.MonthStart()
	board := Board{Month: month}

	byDay := make(map[string][]Task)
	var monthlyPool []Task
	for _, t := range tasks {
		if slot := t.Slot(); !slot.IsZero() {
			byDay[slot.String()] = append(byDay[slot.String()], t)
			continue
		}
		if t.Kind == Monthly && !t.Completed() {
			monthlyPool = append(monthlyPool, t)
		}
	}
	board.UnscheduledMonthly = groupByName(monthlyPool)

	for _, ws := range WeekGrid(month) {
		week := Week{Start: ws}
		for i := range week.Days {
			d := ws.AddDays(i)
			week.Days[i] = Cell{Day: d, InMonth: d.SameMonth(month), Tasks: byDay[d.String()]}
		}
		var pool []Task
		for _, t := range tasks {
			if t.Kind != Weekly || t.Completed() || t.Planned() {
				continue
			}
			if t.StartDate.Between(ws, week.End()) {
				pool = append(pool, t)
			}
		}
		week.Unscheduled = groupByName(pool)
		board.Weeks = append(board.Weeks, week)
	}
	return board
}

func groupByName(tasks []Task) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, t := range tasks {
		i, ok := index[t.Name]
		if !ok {
			index[t.Name] = len(groups)
			groups = append(groups, Group{Name: t.Name, Tasks: []Task{t}})
			continue
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}
