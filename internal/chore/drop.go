package chore

// IsDropAllowed decides whether task may be scheduled onto target given the
// full task set. It never mutates anything.
func IsDropAllowed(task Task, target Day, all []Task) bool {
	if target.IsZero() || task.StartDate.IsZero() {
		return false
	}

	// The grid shows spillover days from adjacent months; those never accept a task.
	if !task.StartDate.SameMonth(target) {
		return false
	}

	if task.PlannedDate.Equal(target) {
		return true
	}

	for _, other := range all {
		if other.ID == task.ID || !other.Planned() {
			continue
		}
		if other.Name == task.Name && other.PlannedDate.Equal(target) {
			return false
		}
	}

	if task.Kind == Weekly && !task.WeekWindow().Contains(target) {
		return false
	}
	return true
}

// CanDrag reports whether the board should let a task be picked up.
func CanDrag(task Task, today Day) bool {
	if task.Completed() || task.Locked() {
		return false
	}
	base := task.StartDate
	if task.Planned() {
		base = task.PlannedDate
	}
	switch task.Kind {
	case Weekly:
		return !base.Before(today.WeekStart())
	case Monthly:
		return base.SameMonth(today)
	default:
		return false
	}
}

// CanToggle reports whether a completion checkbox should be offered.
func CanToggle(task Task, today Day) bool {
	if task.Locked() {
		return false
	}
	if task.Completed() {
		return true
	}
	return checkCompletable(task, today) == nil
}

func checkCompletable(task Task, today Day) error {
	if Classify(task, today) == Missed {
		return ErrMissed
	}
	switch task.Kind {
	case Daily:
		if !task.StartDate.Equal(today) {
			return ErrWrongDay
		}
	default:
		if !task.Planned() {
			return ErrNotPlanned
		}
		if task.PlannedDate.After(today) {
			return ErrFutureDate
		}
	}
	return nil
}
