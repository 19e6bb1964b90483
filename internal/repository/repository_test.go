package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chore-board/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// shared-cache memory databases lock across connections
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func date(s string) datatypes.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return datatypes.Date(t)
}

type fixture struct {
	ctx   context.Context
	db    *gorm.DB
	users *UserRepository
	tasks *TaskRepository
	types *TaskTypeRepository
	kid   model.User
	mom   model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		ctx:   context.Background(),
		db:    db,
		users: NewUserRepository(db),
		tasks: NewTaskRepository(db),
		types: NewTaskTypeRepository(db),
		kid:   model.User{FirstName: "Alice", Role: model.RoleChild},
		mom:   model.User{FirstName: "Mia", LastName: "Stone", Role: model.RoleParent},
	}
	for _, u := range []*model.User{&f.kid, &f.mom} {
		if err := f.users.Create(f.ctx, u); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	return f
}

func (f *fixture) task(t *testing.T, name, kind, start string) model.Task {
	t.Helper()
	tt, err := f.types.GetOrCreate(f.ctx, name, decimal.RequireFromString("1.25"))
	if err != nil {
		t.Fatalf("task type: %v", err)
	}
	task := model.Task{TaskTypeID: tt.ID, AssigneeID: f.kid.ID, Type: kind, StartDate: date(start)}
	if err := f.tasks.Create(f.ctx, &task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func TestListForMonthBounds(t *testing.T) {
	f := newFixture(t)
	f.task(t, "Dishes", "D", "2024-05-31")
	first := f.task(t, "Dishes", "D", "2024-06-01")
	last := f.task(t, "Vacuum", "W", "2024-06-24")
	f.task(t, "Dishes", "D", "2024-07-01")

	from := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	got, err := f.tasks.ListForMonth(f.ctx, f.kid.ID, from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != first.ID || got[1].ID != last.ID {
		t.Fatalf("got %+v", got)
	}
	if got[1].TaskType.TaskName != "Vacuum" || !got[1].TaskType.MonetaryValue.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("task type not preloaded: %+v", got[1].TaskType)
	}

	other, err := f.tasks.ListForMonth(f.ctx, f.mom.ID, from, from.AddDate(0, 1, 0))
	if err != nil || len(other) != 0 {
		t.Fatalf("other assignee: %v %v", other, err)
	}
}

func TestPlannedDateRoundTrip(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Vacuum", "W", "2024-06-03")

	planned := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	if err := f.tasks.UpdatePlannedDate(f.ctx, task.ID, &planned); err != nil {
		t.Fatalf("plan: %v", err)
	}
	got, err := f.tasks.FindByID(f.ctx, task.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.PlannedDate == nil || time.Time(*got.PlannedDate).Format("2006-01-02") != "2024-06-05" {
		t.Fatalf("planned = %v", got.PlannedDate)
	}
	if got.Assignee.FirstName != "Alice" {
		t.Fatalf("assignee not preloaded: %+v", got.Assignee)
	}

	if err := f.tasks.UpdatePlannedDate(f.ctx, task.ID, nil); err != nil {
		t.Fatalf("unplan: %v", err)
	}
	got, _ = f.tasks.FindByID(f.ctx, task.ID)
	if got.PlannedDate != nil {
		t.Fatalf("planned date not cleared: %v", got.PlannedDate)
	}
}

func TestReviewedTaskIsLocked(t *testing.T) {
	f := newFixture(t)
	task := f.task(t, "Dishes", "D", "2024-06-03")
	done := time.Date(2024, time.June, 3, 18, 0, 0, 0, time.UTC)

	if err := f.tasks.Approve(f.ctx, task.ID, f.mom.ID, done); !errors.Is(err, ErrTaskNotCompleted) {
		t.Fatalf("approve open task: %v", err)
	}
	if err := f.tasks.UpdateCompletion(f.ctx, task.ID, &done); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := f.tasks.Approve(f.ctx, task.ID, f.mom.ID, done.Add(time.Hour)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := f.tasks.UpdateCompletion(f.ctx, task.ID, nil); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("uncomplete locked: %v", err)
	}
	if err := f.tasks.Reject(f.ctx, task.ID); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("reject locked: %v", err)
	}
	if err := f.tasks.Approve(f.ctx, task.ID, f.mom.ID, done); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("approve twice: %v", err)
	}
	if err := f.tasks.Reject(f.ctx, 9999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing task: %v", err)
	}

	got, _ := f.tasks.FindByID(f.ctx, task.ID)
	if got.ReviewerID == nil || *got.ReviewerID != f.mom.ID || got.CompletionDate == nil {
		t.Fatalf("review not stored: %+v", got)
	}
}

func TestListPendingReviewOrder(t *testing.T) {
	f := newFixture(t)
	early := time.Date(2024, time.June, 3, 8, 0, 0, 0, time.UTC)
	late := early.Add(3 * time.Hour)

	windows := f.task(t, "Windows", "M", "2024-06-01")
	bins := f.task(t, "Bins", "W", "2024-06-03")
	dishes := f.task(t, "Dishes", "D", "2024-06-03")
	reviewed := f.task(t, "Car", "M", "2024-06-01")
	f.task(t, "Open", "D", "2024-06-04")

	for id, at := range map[uint]time.Time{windows.ID: late, bins.ID: early, dishes.ID: early, reviewed.ID: early} {
		at := at
		if err := f.tasks.UpdateCompletion(f.ctx, id, &at); err != nil {
			t.Fatalf("complete %d: %v", id, err)
		}
	}
	if err := f.tasks.Approve(f.ctx, reviewed.ID, f.mom.ID, late); err != nil {
		t.Fatalf("approve: %v", err)
	}

	got, err := f.tasks.ListPendingReview(f.ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	var names []string
	for _, task := range got {
		names = append(names, task.TaskType.TaskName)
		if task.Assignee.FirstName != "Alice" {
			t.Errorf("assignee of %d not loaded", task.ID)
		}
	}
	if strings.Join(names, ",") != "Bins,Dishes,Windows" {
		t.Fatalf("order = %v", names)
	}
}

func TestTaskTypeGetOrCreate(t *testing.T) {
	f := newFixture(t)
	a, err := f.types.GetOrCreate(f.ctx, "Dishes", decimal.RequireFromString("0.5"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := f.types.GetOrCreate(f.ctx, "Dishes", decimal.RequireFromString("9"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if a.ID != b.ID || !b.MonetaryValue.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("got %+v and %+v", a, b)
	}
	if _, err := f.types.GetOrCreate(f.ctx, "", decimal.Zero); err == nil {
		t.Fatalf("empty name accepted")
	}
	list, _ := f.types.List(f.ctx)
	if len(list) != 1 {
		t.Fatalf("list = %+v", list)
	}
}

func TestTargets(t *testing.T) {
	f := newFixture(t)
	targets := NewTargetRepository(f.db)

	got, err := targets.Find(f.ctx, f.kid.ID, "2024-06")
	if err != nil || !got.TargetAmount.IsZero() {
		t.Fatalf("missing target: %+v %v", got, err)
	}

	if err := targets.SetTarget(f.ctx, f.kid.ID, "2024-06", decimal.RequireFromString("20")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := targets.SetTarget(f.ctx, f.kid.ID, "2024-06", decimal.RequireFromString("25.50")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := targets.SetAchieved(f.ctx, f.kid.ID, "2024-06", decimal.RequireFromString("3.75")); err != nil {
		t.Fatalf("achieved: %v", err)
	}

	got, err = targets.Find(f.ctx, f.kid.ID, "2024-06")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !got.TargetAmount.Equal(decimal.RequireFromString("25.5")) || !got.AchievedAmount.Equal(decimal.RequireFromString("3.75")) {
		t.Fatalf("target = %+v", got)
	}
}

func TestLinkTelegramMovesChat(t *testing.T) {
	f := newFixture(t)
	const chat = int64(4242)

	if err := f.users.LinkTelegram(f.ctx, f.kid.ID, chat); err != nil {
		t.Fatalf("link kid: %v", err)
	}
	if err := f.users.LinkTelegram(f.ctx, f.mom.ID, chat); err != nil {
		t.Fatalf("link mom: %v", err)
	}

	owner, err := f.users.FindByTelegramID(f.ctx, chat)
	if err != nil || owner.ID != f.mom.ID {
		t.Fatalf("owner = %+v, %v", owner, err)
	}
	kid, _ := f.users.FindByID(f.ctx, f.kid.ID)
	if kid.TelegramID != nil {
		t.Fatalf("kid still linked to %d", *kid.TelegramID)
	}
}
