package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chore-board/internal/model"
)

var (
	// ErrTaskLocked is returned when a write targets a reviewed task.
	ErrTaskLocked = errors.New("task already reviewed")
	// ErrTaskNotCompleted is returned when approving a task nobody finished.
	ErrTaskNotCompleted = errors.New("task not completed")
)

// TaskRepository handles CRUD for task instances.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// ListForMonth returns the assignee's tasks whose start date lies in [from, to).
func (r *TaskRepository) ListForMonth(ctx context.Context, assigneeID uint, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Preload("TaskType").
		Preload("Reviewer").
		Where("assignee_id = ? AND start_date >= ? AND start_date < ?", assigneeID, datatypes.Date(from), datatypes.Date(to)).
		Order("start_date ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("TaskType").Preload("Assignee").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListPendingReview returns completed, unreviewed tasks of every assignee, oldest completion first.
func (r *TaskRepository) ListPendingReview(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Joins("TaskType").
		Preload("Assignee").
		Where("tasks.completion_date IS NOT NULL AND tasks.reviewed_date IS NULL").
		Order("tasks.completion_date ASC").
		Order("TaskType.task_name ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}

// UpdatePlannedDate sets or clears (nil) the planned date.
func (r *TaskRepository) UpdatePlannedDate(ctx context.Context, id uint, planned *time.Time) error {
	var value *datatypes.Date
	if planned != nil {
		d := datatypes.Date(*planned)
		value = &d
	}
	return r.updateUnlocked(ctx, id, map[string]interface{}{"planned_date": value}, "plan task")
}

// UpdateCompletion sets or clears (nil) the completion timestamp.
func (r *TaskRepository) UpdateCompletion(ctx context.Context, id uint, completedAt *time.Time) error {
	return r.updateUnlocked(ctx, id, map[string]interface{}{"completion_date": completedAt}, "complete task")
}

// Approve stamps the review on a completed task.
func (r *TaskRepository) Approve(ctx context.Context, id, reviewerID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND reviewed_date IS NULL AND completion_date IS NOT NULL", id).
		Updates(map[string]interface{}{"reviewer_id": reviewerID, "reviewed_date": at})
	if res.Error != nil {
		return fmt.Errorf("approve task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := r.explainMiss(ctx, id); err != nil {
			return err
		}
		return ErrTaskNotCompleted
	}
	return nil
}

// Reject clears the completion of an unreviewed task.
func (r *TaskRepository) Reject(ctx context.Context, id uint) error {
	return r.updateUnlocked(ctx, id, map[string]interface{}{"completion_date": nil}, "reject task")
}

func (r *TaskRepository) updateUnlocked(ctx context.Context, id uint, updates map[string]interface{}, what string) error {
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND reviewed_date IS NULL", id).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("%s: %w", what, res.Error)
	}
	if res.RowsAffected == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// explainMiss tells a missing row apart from a locked one after an update matched nothing.
func (r *TaskRepository) explainMiss(ctx context.Context, id uint) error {
	var task model.Task
	if err := r.db.WithContext(ctx).Select("id", "reviewed_date").First(&task, id).Error; err != nil {
		return err
	}
	if task.ReviewedDate != nil {
		return ErrTaskLocked
	}
	return nil
}
