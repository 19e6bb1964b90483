package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/service"
)

var (
	title = color.New(color.Bold, color.Underline)
	faint = color.New(color.Faint)
	bold  = color.New(color.Bold)
)

func dispositionColor(d chore.Disposition) *color.Color {
	switch d {
	case chore.Planned:
		return color.New(color.FgCyan)
	case chore.Missed:
		return color.New(color.FgRed)
	case chore.PendingReview:
		return color.New(color.FgYellow)
	case chore.Reviewed:
		return color.New(color.FgGreen)
	default:
		return faint
	}
}

func chip(t chore.Task, today chore.Day) string {
	return dispositionColor(chore.Classify(t, today)).Sprintf("%s #%d", t.Name, t.ID)
}

func groupChip(g chore.Group, today chore.Day) string {
	s := chip(g.Top(), today)
	if n := g.Badge(0); n > 1 {
		s += faint.Sprintf(" ×%d", n)
	}
	return s
}

// printBoard writes the month grid, one table row per displayed day.
func printBoard(w io.Writer, owner model.User, board chore.Board, summary chore.MonthSummary, today chore.Day) {
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, title.Sprintf("%s · %s", board.Month.Format("January 2006"), owner.DisplayName()))
	_, _ = fmt.Fprintf(w, "target %s  achieved %s  pending %s  missed %s  remaining %s\n",
		summary.Target.StringFixed(2), summary.Achieved.StringFixed(2), summary.PendingReview.StringFixed(2),
		summary.Missed.StringFixed(2), summary.Remaining.StringFixed(2))

	if len(board.UnscheduledMonthly) > 0 {
		chips := make([]string, 0, len(board.UnscheduledMonthly))
		for _, g := range board.UnscheduledMonthly {
			chips = append(chips, groupChip(g, today))
		}
		_, _ = fmt.Fprintln(w, bold.Sprint("\nThis month: ")+strings.Join(chips, ", "))
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 80
	for _, week := range board.Weeks {
		tbl.AddRow("", "")
		var pool []string
		for _, g := range week.Unscheduled {
			pool = append(pool, groupChip(g, today))
		}
		tbl.AddRow(bold.Sprintf("week %s", week.Start.Format("02 Jan")), strings.Join(pool, ", "))
		for _, cell := range week.Days {
			label := cell.Day.Format("Mon 02")
			if !cell.InMonth {
				label = faint.Sprint(label)
			} else if cell.Day.Equal(today) {
				label = bold.Sprint(label)
			}
			chips := make([]string, 0, len(cell.Tasks))
			for _, t := range cell.Tasks {
				chips = append(chips, chip(t, today))
			}
			tbl.AddRow(label, strings.Join(chips, ", "))
		}
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printPending(w io.Writer, items []service.PendingTask) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint("nothing waiting for review"))
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Task"), bold.Sprint("Kind"), bold.Sprint("Assignee"), bold.Sprint("Value"), bold.Sprint("Completed"))
	for _, item := range items {
		t := item.Task
		tbl.AddRow(t.ID, t.Name, t.Kind, item.Assignee.DisplayName(), t.Value.StringFixed(2), t.CompletedAt.Local().Format("2006-01-02 15:04"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}

func printUsers(w io.Writer, users []model.User) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("ID"), bold.Sprint("Name"), bold.Sprint("Role"), bold.Sprint("Telegram"))
	for _, u := range users {
		linked := faint.Sprint("-")
		if u.TelegramID != nil {
			linked = fmt.Sprint(*u.TelegramID)
		}
		tbl.AddRow(u.ID, u.DisplayName(), u.Role, linked)
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(w, tbl)
}
