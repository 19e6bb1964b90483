package chore

// Disposition is the derived status of a task. It is never stored.
type Disposition int

const (
	Unplanned Disposition = iota
	Planned
	Missed
	PendingReview
	Reviewed
)

func (d Disposition) String() string {
	switch d {
	case Planned:
		return "Planned"
	case Missed:
		return "Missed"
	case PendingReview:
		return "Pending Review"
	case Reviewed:
		return "Reviewed"
	default:
		return "Unplanned"
	}
}

// Classify derives the disposition of task as seen on today.
//
// Monthly tasks count as missed once their month has ended, the same way weekly
// tasks do once their week has.
func Classify(task Task, today Day) Disposition {
	if task.Reviewed() {
		return Reviewed
	}
	if task.Completed() {
		return PendingReview
	}

	switch task.Kind {
	case Daily:
		if task.StartDate.Before(today) {
			return Missed
		}
		return Planned
	case Weekly:
		if task.WeekWindow().End.Before(today) {
			return Missed
		}
	case Monthly:
		if task.MonthWindow().End.Before(today) {
			return Missed
		}
	}

	if !task.Planned() {
		return Unplanned
	}
	return Planned
}
