package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/repository"
)

// PendingTask is a completed task waiting for a reviewer, with its assignee.
type PendingTask struct {
	Task     chore.Task
	Assignee model.User
}

// ReviewService serves the reviewer's queue across all assignees.
type ReviewService struct {
	taskRepo     *repository.TaskRepository
	boards       *BoardService
	reviewerRole string
	now          func() time.Time
}

func NewReviewService(taskRepo *repository.TaskRepository, boards *BoardService, reviewerRole string) *ReviewService {
	if reviewerRole == "" {
		reviewerRole = model.RoleParent
	}
	return &ReviewService{taskRepo: taskRepo, boards: boards, reviewerRole: reviewerRole, now: time.Now}
}

// CanReview reports whether user may approve or reject tasks.
func (s *ReviewService) CanReview(user *model.User) bool {
	return user != nil && user.Role == s.reviewerRole
}

// Pending lists tasks waiting for review, oldest completion first.
func (s *ReviewService) Pending(ctx context.Context) ([]PendingTask, error) {
	rows, err := s.taskRepo.ListPendingReview(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PendingTask, 0, len(rows))
	for _, row := range rows {
		task, err := toChoreTask(row)
		if err != nil {
			log.Printf("skip pending task %d: %v", row.ID, err)
			continue
		}
		out = append(out, PendingTask{Task: task, Assignee: row.Assignee})
	}
	return out, nil
}

// Approve locks a completed task under reviewer.
func (s *ReviewService) Approve(ctx context.Context, reviewer *model.User, taskID uint) (chore.Task, error) {
	return s.review(ctx, reviewer, taskID, func(e *chore.Engine) error {
		_, err := e.Approve(taskID, reviewer.ID, s.now())
		return err
	})
}

// Reject returns a completed task to its assignee as incomplete.
func (s *ReviewService) Reject(ctx context.Context, reviewer *model.User, taskID uint) (chore.Task, error) {
	return s.review(ctx, reviewer, taskID, func(e *chore.Engine) error {
		_, err := e.Reject(taskID)
		return err
	})
}

func (s *ReviewService) review(ctx context.Context, reviewer *model.User, taskID uint, apply func(*chore.Engine) error) (chore.Task, error) {
	if !s.CanReview(reviewer) {
		return chore.Task{}, ErrForbidden
	}

	row, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return chore.Task{}, chore.ErrTaskNotFound
		}
		return chore.Task{}, fmt.Errorf("find task: %w", err)
	}
	task, err := toChoreTask(*row)
	if err != nil {
		return chore.Task{}, err
	}

	// The assignee's cached board must not overwrite the review with stale state.
	s.boards.Forget(ctx, task.AssigneeID)

	engine := chore.NewEngine([]chore.Task{task}, NewTaskWriter(s.taskRepo),
		chore.WithClock(s.now),
		chore.WithSyncWrites(),
		chore.WithWritePolicy(chore.Rollback))
	if err := apply(engine); err != nil {
		return task, err
	}

	updated, _ := engine.Task(taskID)
	if err := s.boards.RefreshAchieved(ctx, task.AssigneeID, task.StartDate); err != nil {
		log.Printf("refresh achieved for user %d: %v", task.AssigneeID, err)
	}
	log.Printf("[info] task %d reviewed by %d: %s", taskID, reviewer.ID, chore.Classify(updated, chore.DayOf(s.now())))
	return updated, nil
}
