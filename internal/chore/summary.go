package chore

import "github.com/shopspring/decimal"

// MonthSummary aggregates the monetary value of a month's tasks by disposition.
type MonthSummary struct {
	Month         Day
	Target        decimal.Decimal
	Achieved      decimal.Decimal
	PendingReview decimal.Decimal
	Missed        decimal.Decimal
	Remaining     decimal.Decimal
}

// Summarize recomputes the month's aggregates from scratch. Only tasks whose start
// date falls in month are counted.
func Summarize(tasks []Task, month, today Day, target decimal.Decimal) MonthSummary {
	s := MonthSummary{
		Month:         month.MonthStart(),
		Target:        target,
		Achieved:      decimal.Zero,
		PendingReview: decimal.Zero,
		Missed:        decimal.Zero,
	}
	for _, t := range tasks {
		if !t.StartDate.SameMonth(month) {
			continue
		}
		switch Classify(t, today) {
		case Reviewed:
			s.Achieved = s.Achieved.Add(t.Value)
		case PendingReview:
			s.PendingReview = s.PendingReview.Add(t.Value)
		case Missed:
			s.Missed = s.Missed.Add(t.Value)
		}
	}
	s.Remaining = decimal.Max(target.Sub(s.Achieved), decimal.Zero)
	return s
}
