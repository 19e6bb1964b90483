package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/repository"
)

// MonthData is what one fetch cycle returns for an assignee and month.
type MonthData struct {
	AssigneeID uint
	Month      chore.Day
	Tasks      []chore.Task
	Target     decimal.Decimal
}

// MonthBoard is a live board for one assignee and month. Its engine keeps the
// optimistic state between interactions.
type MonthBoard struct {
	AssigneeID uint
	Month      chore.Day
	Engine     *chore.Engine

	mu     sync.Mutex
	target decimal.Decimal
}

// Target is the month's money target as last read from storage.
func (b *MonthBoard) Target() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

// Projection buckets the current tasks into the calendar grid.
func (b *MonthBoard) Projection() chore.Board {
	return chore.Project(b.Engine.Snapshot().Tasks, b.Month)
}

// Summary recomputes the month's monetary aggregates.
func (b *MonthBoard) Summary() chore.MonthSummary {
	snap := b.Engine.Snapshot()
	return chore.Summarize(snap.Tasks, b.Month, snap.Today, b.Target())
}

type boardKey struct {
	assignee uint
	month    string
}

// BoardService loads boards from storage and writes engine mutations back.
type BoardService struct {
	taskRepo   *repository.TaskRepository
	targetRepo *repository.TargetRepository
	policy     chore.WritePolicy
	now        func() time.Time

	mu     sync.Mutex
	boards map[boardKey]*MonthBoard
}

func NewBoardService(taskRepo *repository.TaskRepository, targetRepo *repository.TargetRepository, policy chore.WritePolicy) *BoardService {
	return &BoardService{
		taskRepo:   taskRepo,
		targetRepo: targetRepo,
		policy:     policy,
		now:        time.Now,
		boards:     make(map[boardKey]*MonthBoard),
	}
}

// Fetch reads the assignee's tasks starting in month together with the month's target.
func (s *BoardService) Fetch(ctx context.Context, assigneeID uint, month chore.Day) (MonthData, error) {
	month = month.MonthStart()
	rows, err := s.taskRepo.ListForMonth(ctx, assigneeID, month.In(time.UTC), month.AddMonths(1).In(time.UTC))
	if err != nil {
		return MonthData{}, err
	}
	target, err := s.targetRepo.Find(ctx, assigneeID, month.MonthKey())
	if err != nil {
		return MonthData{}, err
	}

	data := MonthData{AssigneeID: assigneeID, Month: month, Target: target.TargetAmount}
	for _, row := range rows {
		task, err := toChoreTask(row)
		if err != nil {
			log.Printf("skip task %d: %v", row.ID, err)
			continue
		}
		data.Tasks = append(data.Tasks, task)
	}
	return data, nil
}

// Load returns the live board for the assignee and month. A cached board is
// re-read from storage whenever it has no outstanding writes.
func (s *BoardService) Load(ctx context.Context, assigneeID uint, month chore.Day) (*MonthBoard, error) {
	key := boardKey{assignee: assigneeID, month: month.MonthKey()}

	s.mu.Lock()
	board, ok := s.boards[key]
	s.mu.Unlock()
	if ok {
		s.refresh(ctx, board)
		return board, nil
	}

	data, err := s.Fetch(ctx, assigneeID, month)
	if err != nil {
		return nil, err
	}
	board = &MonthBoard{
		AssigneeID: assigneeID,
		Month:      data.Month,
		target:     data.Target,
		Engine: chore.NewEngine(data.Tasks, NewTaskWriter(s.taskRepo),
			chore.WithClock(s.now),
			chore.WithWritePolicy(s.policy)),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.boards[key]; ok {
		return existing, nil
	}
	s.boards[key] = board
	return board, nil
}

// refresh swaps in fresh rows unless the board still has writes to settle.
// The cached state is kept when the read fails.
func (s *BoardService) refresh(ctx context.Context, board *MonthBoard) {
	if board.Engine.Busy() {
		return
	}
	seen := board.Engine.Changes()
	data, err := s.Fetch(ctx, board.AssigneeID, board.Month)
	if err != nil {
		log.Printf("refresh board %d/%s: %v", board.AssigneeID, board.Month.MonthKey(), err)
		return
	}
	if board.Engine.Reload(data.Tasks, seen) {
		board.mu.Lock()
		board.target = data.Target
		board.mu.Unlock()
	}
}

// Forget drops the assignee's cached boards after flushing their failed writes,
// so the next Load reads fresh rows.
func (s *BoardService) Forget(ctx context.Context, assigneeID uint) {
	s.mu.Lock()
	var dropped []*MonthBoard
	for key, board := range s.boards {
		if key.assignee == assigneeID {
			dropped = append(dropped, board)
			delete(s.boards, key)
		}
	}
	s.mu.Unlock()

	for _, board := range dropped {
		board.Engine.Wait()
		if err := board.Engine.Retry(ctx); err != nil {
			log.Printf("flush board %d/%s: %v", assigneeID, board.Month.MonthKey(), err)
		}
	}
}

// RetryAll replays failed writes of every cached board.
func (s *BoardService) RetryAll(ctx context.Context) error {
	s.mu.Lock()
	boards := make([]*MonthBoard, 0, len(s.boards))
	for _, board := range s.boards {
		boards = append(boards, board)
	}
	s.mu.Unlock()

	var errs []error
	for _, board := range boards {
		if len(board.Engine.Pending()) == 0 {
			continue
		}
		if err := board.Engine.Retry(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush waits for in-flight writes of every cached board, then replays the
// failed ones once.
func (s *BoardService) Flush(ctx context.Context) error {
	s.mu.Lock()
	boards := make([]*MonthBoard, 0, len(s.boards))
	for _, board := range s.boards {
		boards = append(boards, board)
	}
	s.mu.Unlock()

	for _, board := range boards {
		board.Engine.Wait()
	}
	return s.RetryAll(ctx)
}

// RefreshAchieved stores the recomputed achieved amount on the month's target row.
func (s *BoardService) RefreshAchieved(ctx context.Context, assigneeID uint, month chore.Day) error {
	data, err := s.Fetch(ctx, assigneeID, month)
	if err != nil {
		return err
	}
	summary := chore.Summarize(data.Tasks, data.Month, chore.DayOf(s.now()), data.Target)
	return s.targetRepo.SetAchieved(ctx, assigneeID, data.Month.MonthKey(), summary.Achieved)
}

// TaskWriter persists engine commands through the task repository.
type TaskWriter struct {
	repo *repository.TaskRepository
}

func NewTaskWriter(repo *repository.TaskRepository) *TaskWriter {
	return &TaskWriter{repo: repo}
}

func (w *TaskWriter) PlanTask(ctx context.Context, taskID uint, day chore.Day) error {
	if day.IsZero() {
		return translate(w.repo.UpdatePlannedDate(ctx, taskID, nil))
	}
	t := day.In(time.UTC)
	return translate(w.repo.UpdatePlannedDate(ctx, taskID, &t))
}

func (w *TaskWriter) CompleteTask(ctx context.Context, taskID uint, at time.Time) error {
	if at.IsZero() {
		return translate(w.repo.UpdateCompletion(ctx, taskID, nil))
	}
	return translate(w.repo.UpdateCompletion(ctx, taskID, &at))
}

func (w *TaskWriter) ApproveTask(ctx context.Context, taskID, reviewerID uint, at time.Time) error {
	return translate(w.repo.Approve(ctx, taskID, reviewerID, at))
}

func (w *TaskWriter) RejectTask(ctx context.Context, taskID uint) error {
	return translate(w.repo.Reject(ctx, taskID))
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return chore.ErrTaskNotFound
	case errors.Is(err, repository.ErrTaskLocked):
		return chore.ErrLocked
	case errors.Is(err, repository.ErrTaskNotCompleted):
		return chore.ErrNotCompleted
	default:
		return err
	}
}

func toChoreTask(row model.Task) (chore.Task, error) {
	kind, err := chore.ParseKind(row.Type)
	if err != nil {
		return chore.Task{}, err
	}
	task := chore.Task{
		ID:         row.ID,
		Kind:       kind,
		Name:       row.TaskType.TaskName,
		AssigneeID: row.AssigneeID,
		StartDate:  chore.DayOf(time.Time(row.StartDate)),
		Value:      row.TaskType.MonetaryValue,
	}
	if row.PlannedDate != nil {
		task.PlannedDate = chore.DayOf(time.Time(*row.PlannedDate))
	}
	if row.CompletionDate != nil {
		task.CompletedAt = *row.CompletionDate
	}
	if row.ReviewedDate != nil {
		task.ReviewedAt = *row.ReviewedDate
	}
	if row.ReviewerID != nil {
		task.ReviewerID = *row.ReviewerID
	}
	if row.Reviewer != nil {
		task.ReviewerName = row.Reviewer.DisplayName()
	}
	if task.StartDate.IsZero() {
		return chore.Task{}, fmt.Errorf("task %d has no start date", row.ID)
	}
	return task, nil
}
