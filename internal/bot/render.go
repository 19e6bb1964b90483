package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/service"
)

const (
	cbMonthPrefix = "month:"
	cbDonePrefix  = "done:"
	cbPlanPrefix  = "plan:"
	cbUndoPrefix  = "undo:"

	cbApprovePrefix = "approve:"
	cbRejectPrefix  = "reject:"

	maxTaskButtons = 12
)

var dispositionIcons = map[chore.Disposition]string{
	chore.Unplanned:     "▫️",
	chore.Planned:       "🗓",
	chore.Missed:        "❌",
	chore.PendingReview: "⏳",
	chore.Reviewed:      "⭐",
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxLen-1]) + "…"
}

// renderBoard prints the month grid as a day-by-day list. Only days of the
// month that carry tasks are printed.
func renderBoard(owner model.User, board chore.Board, summary chore.MonthSummary, today chore.Day) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>%s</b> · %s\n", board.Month.Format("January 2006"), escape(owner.DisplayName())))
	b.WriteString(renderSummary(summary))
	b.WriteByte('\n')

	if len(board.UnscheduledMonthly) > 0 {
		b.WriteString("\n<b>To plan this month</b>\n")
		for _, g := range board.UnscheduledMonthly {
			b.WriteString(renderGroup(g, today))
		}
	}

	for _, week := range board.Weeks {
		var lines []string
		for _, g := range week.Unscheduled {
			lines = append(lines, renderGroup(g, today))
		}
		for _, cell := range week.Days {
			if !cell.InMonth || len(cell.Tasks) == 0 {
				continue
			}
			chips := make([]string, 0, len(cell.Tasks))
			for _, t := range cell.Tasks {
				chips = append(chips, renderChip(t, today))
			}
			marker := ""
			if cell.Day.Equal(today) {
				marker = " 👈"
			}
			lines = append(lines, fmt.Sprintf("<code>%s</code> %s%s\n", cell.Day.Format("Mon 02"), strings.Join(chips, ", "), marker))
		}
		if len(lines) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n<b>Week %s – %s</b>\n", week.Start.Format("02 Jan"), week.End().Format("02 Jan")))
		for _, line := range lines {
			b.WriteString(line)
		}
	}
	return strings.TrimSpace(b.String())
}

func renderSummary(s chore.MonthSummary) string {
	line := fmt.Sprintf("💰 %s of %s earned", s.Achieved.StringFixed(2), s.Target.StringFixed(2))
	var extra []string
	if s.PendingReview.IsPositive() {
		extra = append(extra, s.PendingReview.StringFixed(2)+" pending")
	}
	if s.Missed.IsPositive() {
		extra = append(extra, s.Missed.StringFixed(2)+" missed")
	}
	if s.Remaining.IsPositive() {
		extra = append(extra, s.Remaining.StringFixed(2)+" to go")
	}
	if len(extra) > 0 {
		line += " (" + strings.Join(extra, ", ") + ")"
	}
	return line
}

func renderGroup(g chore.Group, today chore.Day) string {
	top := g.Top()
	line := fmt.Sprintf("• %s <b>%s</b> #%d", dispositionIcons[chore.Classify(top, today)], escape(g.Name), top.ID)
	if n := g.Badge(0); n > 1 {
		line += fmt.Sprintf(" ×%d", n)
	}
	return line + "\n"
}

func renderChip(t chore.Task, today chore.Day) string {
	return fmt.Sprintf("%s %s #%d", dispositionIcons[chore.Classify(t, today)], escape(t.Name), t.ID)
}

// boardKeyboard offers month navigation plus quick actions for today: tick off
// what is due and plan pooled chores onto today.
func boardKeyboard(board chore.Board, tasks []chore.Task, today chore.Day) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	buttons := 0

	if board.Month.SameMonth(today) {
		for _, t := range tasks {
			if buttons >= maxTaskButtons {
				break
			}
			switch {
			case !t.Completed() && chore.CanToggle(t, today):
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("✅ #%d · %s", t.ID, shortTitle(t.Name, 24)),
					taskCallback(cbDonePrefix, t.ID, board.Month.MonthKey()))))
				buttons++
			case chore.Classify(t, today) == chore.PendingReview && t.Slot().Equal(today):
				rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
					fmt.Sprintf("↩️ #%d · %s", t.ID, shortTitle(t.Name, 24)),
					taskCallback(cbUndoPrefix, t.ID, board.Month.MonthKey()))))
				buttons++
			}
		}

		var pools []chore.Group
		pools = append(pools, board.UnscheduledMonthly...)
		for _, w := range board.Weeks {
			if today.Between(w.Start, w.End()) {
				pools = append(pools, w.Unscheduled...)
			}
		}
		for _, g := range pools {
			if buttons >= maxTaskButtons {
				break
			}
			top := g.Top()
			if !chore.CanDrag(top, today) || !chore.IsDropAllowed(top, today, tasks) {
				continue
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("📌 Today · %s", shortTitle(g.Name, 24)),
				taskCallback(cbPlanPrefix, top.ID, today.String()))))
			buttons++
		}
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ "+board.Month.AddMonths(-1).Format("Jan"), cbMonthPrefix+board.Month.AddMonths(-1).MonthKey()),
		tgbotapi.NewInlineKeyboardButtonData("Today", cbMonthPrefix+today.MonthKey()),
		tgbotapi.NewInlineKeyboardButtonData(board.Month.AddMonths(1).Format("Jan")+" ▶️", cbMonthPrefix+board.Month.AddMonths(1).MonthKey()),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// validTargets lists the in-month days task could be dropped on.
func validTargets(board chore.Board, task chore.Task, all []chore.Task) []string {
	invalid := make(map[string]bool)
	for _, d := range board.InvalidTargets(task, all) {
		invalid[d.String()] = true
	}
	var out []string
	for _, d := range board.Days() {
		if d.SameMonth(board.Month) && !invalid[d.String()] {
			out = append(out, d.Format("Mon 02"))
		}
	}
	return out
}

func taskCallback(prefix string, id uint, arg string) string {
	return prefix + strconv.FormatUint(uint64(id), 10) + ":" + arg
}

// parseTaskCallback splits "<prefix><id>:<arg>".
func parseTaskCallback(data, prefix string) (uint, string, error) {
	rest := strings.TrimPrefix(data, prefix)
	idPart, arg, _ := strings.Cut(rest, ":")
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, "", fmt.Errorf("invalid task id in %q", data)
	}
	return uint(id), arg, nil
}

func renderPending(items []service.PendingTask) string {
	if len(items) == 0 {
		return "🎉 Nothing is waiting for review."
	}
	var b strings.Builder
	b.WriteString("⏳ <b>Waiting for review</b>\n")
	for _, item := range items {
		t := item.Task
		b.WriteString(fmt.Sprintf("• #%d <b>%s</b> (%s) · %s · %s · done %s\n",
			t.ID, escape(t.Name), t.Kind, escape(item.Assignee.DisplayName()),
			t.Value.StringFixed(2), t.CompletedAt.Format("02 Jan 15:04")))
	}
	b.WriteString("\nUse /approve &lt;id&gt; or /reject &lt;id&gt;.")
	return b.String()
}

func pendingKeyboard(items []service.PendingTask) *tgbotapi.InlineKeyboardMarkup {
	if len(items) == 0 {
		return nil
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, item := range items {
		if i >= maxTaskButtons {
			break
		}
		id := strconv.FormatUint(uint64(item.Task.ID), 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👍 #"+id+" "+shortTitle(item.Task.Name, 16), cbApprovePrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("👎", cbRejectPrefix+id),
		))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// describeRejection turns a rule rejection into a chat-friendly sentence.
func describeRejection(err error) string {
	switch {
	case errors.Is(err, chore.ErrTaskNotFound):
		return "I can't find that task on this board."
	case errors.Is(err, chore.ErrLocked):
		return "That task is already reviewed and can't change any more."
	case errors.Is(err, chore.ErrCompleted):
		return "That task is already done. Undo it first."
	case errors.Is(err, chore.ErrNotCompleted):
		return "That task isn't done yet."
	case errors.Is(err, chore.ErrNotPlanned):
		return "Plan the task on a day first."
	case errors.Is(err, chore.ErrFutureDate):
		return "That task is planned for a later day."
	case errors.Is(err, chore.ErrWrongDay):
		return "Daily chores can only be ticked off on their own day."
	case errors.Is(err, chore.ErrMissed):
		return "Too late, the window for that task has passed."
	case errors.Is(err, chore.ErrDropRejected):
		return "That day is outside the task's window, or another one of the same chore is already there."
	case errors.Is(err, chore.ErrDailyNotPlannable):
		return "Daily chores already have their day."
	case errors.Is(err, service.ErrForbidden):
		return "Only a reviewer can do that."
	case errors.Is(err, service.ErrInvalidPin):
		return "Wrong PIN."
	case errors.Is(err, service.ErrPinFormat):
		return "A PIN is 4 to 8 digits."
	case errors.Is(err, service.ErrUserNotFound):
		return "No such user. See /users."
	default:
		return "Something went wrong: " + escape(err.Error())
	}
}
