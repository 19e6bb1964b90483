package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/repository"
)

// TaskInput describes a chore to schedule for one assignee over a month.
type TaskInput struct {
	Name       string
	Kind       chore.Kind
	Value      decimal.Decimal
	AssigneeID uint
	Month      chore.Day
}

// TaskService creates task instances from the chore catalogue.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	taskTypeRepo *repository.TaskTypeRepository
	targetRepo   *repository.TargetRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, taskTypeRepo *repository.TaskTypeRepository, targetRepo *repository.TargetRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, taskTypeRepo: taskTypeRepo, targetRepo: targetRepo}
}

// Occurrences returns the start dates of kind within month: every day for daily
// chores, the 1st and every following Monday for weekly ones, the 1st for monthly.
func Occurrences(kind chore.Kind, month chore.Day) []chore.Day {
	first := month.MonthStart()
	last := month.MonthEnd()
	switch kind {
	case chore.Daily:
		days := make([]chore.Day, 0, last.Day())
		for d := first; !d.After(last); d = d.AddDays(1) {
			days = append(days, d)
		}
		return days
	case chore.Weekly:
		days := []chore.Day{first}
		for d := first.WeekStart().AddDays(7); !d.After(last); d = d.AddDays(7) {
			days = append(days, d)
		}
		return days
	default:
		return []chore.Day{first}
	}
}

// CreateMonth schedules every occurrence of the chore in the input month.
func (s *TaskService) CreateMonth(ctx context.Context, input TaskInput) ([]model.Task, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("task name is required")
	}
	if input.AssigneeID == 0 {
		return nil, fmt.Errorf("assignee is required")
	}

	taskType, err := s.taskTypeRepo.GetOrCreate(ctx, name, input.Value)
	if err != nil {
		return nil, err
	}

	var created []model.Task
	for _, d := range Occurrences(input.Kind, input.Month) {
		task := model.Task{
			TaskTypeID: taskType.ID,
			AssigneeID: input.AssigneeID,
			Type:       input.Kind.Code(),
			StartDate:  datatypes.Date(d.In(time.UTC)),
		}
		if err := s.taskRepo.Create(ctx, &task); err != nil {
			return created, err
		}
		created = append(created, task)
	}
	return created, nil
}

// SetTarget records the reward target for an assignee's month.
func (s *TaskService) SetTarget(ctx context.Context, assigneeID uint, month chore.Day, amount decimal.Decimal) error {
	return s.targetRepo.SetTarget(ctx, assigneeID, month.MonthKey(), amount)
}
