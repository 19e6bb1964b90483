package bot

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/service"
)

func boardFixture() ([]chore.Task, chore.Day) {
	today := chore.MustParseDay("2024-06-05")
	done := time.Date(2024, time.June, 5, 9, 0, 0, 0, time.UTC)
	return []chore.Task{
		{ID: 1, Kind: chore.Daily, Name: "Dishes", StartDate: chore.MustParseDay("2024-06-05")},
		{ID: 2, Kind: chore.Daily, Name: "Dishes", StartDate: chore.MustParseDay("2024-06-04")},
		{ID: 3, Kind: chore.Weekly, Name: "Vacuum", StartDate: chore.MustParseDay("2024-06-03")},
		{ID: 4, Kind: chore.Monthly, Name: "Windows <big>", StartDate: chore.MustParseDay("2024-06-01")},
		{ID: 5, Kind: chore.Monthly, Name: "Windows <big>", StartDate: chore.MustParseDay("2024-06-01")},
		{ID: 6, Kind: chore.Weekly, Name: "Bins", StartDate: chore.MustParseDay("2024-06-03"), PlannedDate: today, CompletedAt: done},
	}, today
}

func TestRenderBoard(t *testing.T) {
	tasks, today := boardFixture()
	board := chore.Project(tasks, today)
	summary := chore.Summarize(tasks, today, today, decimal.RequireFromString("10"))
	text := renderBoard(model.User{FirstName: "Alice"}, board, summary, today)

	for _, want := range []string{
		"<b>June 2024</b> · Alice",
		"0.00 of 10.00 earned",
		"Windows &lt;big&gt;</b> #4 ×2",
		"<code>Wed 05</code>",
		"👈",
		"❌ Dishes #2",
		"⏳ Bins #6",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("board misses %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "<big>") {
		t.Errorf("task names not escaped")
	}
}

func TestBoardKeyboard(t *testing.T) {
	tasks, today := boardFixture()
	board := chore.Project(tasks, today)
	markup := boardKeyboard(board, tasks, today)

	var data []string
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData != nil {
				data = append(data, *button.CallbackData)
			}
		}
	}
	joined := strings.Join(data, " ")
	for _, want := range []string{"done:1:2024-06", "undo:6:2024-06", "plan:4:2024-06-05", "plan:3:2024-06-05", "month:2024-05", "month:2024-07"} {
		if !strings.Contains(joined, want) {
			t.Errorf("keyboard misses %q: %v", want, data)
		}
	}
	if strings.Contains(joined, "done:2:") {
		t.Errorf("missed task offered for completion: %v", data)
	}

	other := boardKeyboard(chore.Project(nil, chore.MustParseDay("2024-08-01")), nil, today)
	if len(other.InlineKeyboard) != 1 {
		t.Errorf("other month should only navigate: %d rows", len(other.InlineKeyboard))
	}
}

func TestValidTargets(t *testing.T) {
	tasks, today := boardFixture()
	board := chore.Project(tasks, today)
	got := validTargets(board, tasks[2], tasks)
	if strings.Join(got, ",") != "Mon 03,Tue 04,Wed 05,Thu 06,Fri 07,Sat 08,Sun 09" {
		t.Fatalf("vacuum targets = %v", got)
	}
	if got := validTargets(board, tasks[3], tasks); len(got) != 30 {
		t.Fatalf("windows targets = %d", len(got))
	}
}

func TestParseTaskCallback(t *testing.T) {
	id, arg, err := parseTaskCallback(taskCallback(cbPlanPrefix, 42, "2024-06-05"), cbPlanPrefix)
	if err != nil || id != 42 || arg != "2024-06-05" {
		t.Fatalf("got %d %q %v", id, arg, err)
	}
	if id, arg, err := parseTaskCallback("approve:7", cbApprovePrefix); err != nil || id != 7 || arg != "" {
		t.Fatalf("approve: %d %q %v", id, arg, err)
	}
	if _, _, err := parseTaskCallback("done:x:2024-06", cbDonePrefix); err == nil {
		t.Fatalf("bad id accepted")
	}
}

func TestRenderPending(t *testing.T) {
	if got := renderPending(nil); !strings.Contains(got, "Nothing") {
		t.Fatalf("empty = %q", got)
	}
	if pendingKeyboard(nil) != nil {
		t.Fatalf("keyboard for empty queue")
	}
	items := []service.PendingTask{{
		Task: chore.Task{ID: 9, Kind: chore.Weekly, Name: "Vacuum", Value: decimal.RequireFromString("2"),
			CompletedAt: time.Date(2024, time.June, 5, 9, 30, 0, 0, time.UTC)},
		Assignee: model.User{FirstName: "Alice", LastName: "Stone"},
	}}
	got := renderPending(items)
	if !strings.Contains(got, "#9 <b>Vacuum</b> (weekly) · Alice Stone · 2.00 · done 05 Jun 09:30") {
		t.Fatalf("pending = %q", got)
	}
	if kb := pendingKeyboard(items); kb == nil || len(kb.InlineKeyboard) != 1 {
		t.Fatalf("keyboard = %+v", kb)
	}
}

func TestDescribeRejection(t *testing.T) {
	if got := describeRejection(chore.ErrMissed); !strings.Contains(got, "passed") {
		t.Errorf("missed = %q", got)
	}
	if got := describeRejection(service.ErrForbidden); !strings.Contains(got, "reviewer") {
		t.Errorf("forbidden = %q", got)
	}
	if got := describeRejection(errors.New("disk <full>")); !strings.Contains(got, "&lt;full&gt;") {
		t.Errorf("fallback = %q", got)
	}
}

func TestStripTags(t *testing.T) {
	if got := stripTags("✅ <b>Dishes &amp; cups</b> done"); got != "✅ Dishes & cups done" {
		t.Fatalf("got %q", got)
	}
}
