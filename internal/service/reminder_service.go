package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"chore-board/internal/chore"
	"chore-board/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	boards *BoardService
}

func NewReminderService(boards *BoardService) *ReminderService {
	return &ReminderService{boards: boards}
}

// DailySummary lists what the user can still do today, what slipped and how the
// month's reward is going.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	today := chore.DayOf(now)
	data, err := s.boards.Fetch(ctx, user.ID, today)
	if err != nil {
		return "", err
	}

	var due, unplanned, missed []chore.Task
	for _, task := range data.Tasks {
		switch chore.Classify(task, today) {
		case chore.Planned:
			if chore.CanToggle(task, today) {
				due = append(due, task)
			}
		case chore.Unplanned:
			unplanned = append(unplanned, task)
		case chore.Missed:
			// Older missed dailies are noise once their week has passed.
			if task.Kind != chore.Daily || task.StartDate.WeekStart().Equal(today.WeekStart()) {
				missed = append(missed, task)
			}
		}
	}
	sort.SliceStable(missed, func(i, j int) bool { return missed[i].StartDate.Before(missed[j].StartDate) })

	summary := chore.Summarize(data.Tasks, data.Month, today, data.Target)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("📋 <b>Chores for %s</b>\n", html.EscapeString(user.FirstName)))
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", today.Format("Mon 02 Jan 2006")))

	builder.WriteString("✅ <b>Ready to tick off</b>\n")
	if len(due) == 0 {
		builder.WriteString("— nothing due today\n")
	}
	for _, task := range due {
		builder.WriteString(formatTask(task))
	}

	if len(unplanned) > 0 {
		builder.WriteString("\n📌 <b>Still to plan</b>\n")
		for _, group := range groupNames(unplanned) {
			builder.WriteString(group)
		}
	}

	if len(missed) > 0 {
		builder.WriteString("\n⚠️ <b>Missed</b>\n")
		for _, task := range missed {
			builder.WriteString(formatTask(task))
		}
	}

	builder.WriteString(fmt.Sprintf("\n💰 %s of %s earned", summary.Achieved.StringFixed(2), summary.Target.StringFixed(2)))
	if summary.PendingReview.IsPositive() {
		builder.WriteString(fmt.Sprintf(", %s awaiting review", summary.PendingReview.StringFixed(2)))
	}
	if summary.Missed.IsPositive() {
		builder.WriteString(fmt.Sprintf(", %s missed", summary.Missed.StringFixed(2)))
	}
	builder.WriteByte('\n')

	return strings.TrimSpace(builder.String()), nil
}

func formatTask(task chore.Task) string {
	line := fmt.Sprintf("• %s <i>(%s)</i>", html.EscapeString(strings.TrimSpace(task.Name)), task.Kind)
	if slot := task.Slot(); !slot.IsZero() {
		line += " · " + slot.Format("Mon 02 Jan")
	}
	return line + "\n"
}

func groupNames(tasks []chore.Task) []string {
	counts := make(map[string]int)
	var order []string
	for _, task := range tasks {
		if counts[task.Name] == 0 {
			order = append(order, task.Name)
		}
		counts[task.Name]++
	}
	lines := make([]string, 0, len(order))
	for _, name := range order {
		line := "• " + html.EscapeString(name)
		if counts[name] > 1 {
			line += fmt.Sprintf(" ×%d", counts[name])
		}
		lines = append(lines, line+"\n")
	}
	return lines
}
