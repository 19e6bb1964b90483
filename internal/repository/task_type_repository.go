package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"chore-board/internal/model"
)

// TaskTypeRepository manages the chore catalogue.
type TaskTypeRepository struct {
	db *gorm.DB
}

func NewTaskTypeRepository(db *gorm.DB) *TaskTypeRepository {
	return &TaskTypeRepository{db: db}
}

// GetOrCreate returns the catalogue entry called name, creating it with value when missing.
func (r *TaskTypeRepository) GetOrCreate(ctx context.Context, name string, value decimal.Decimal) (*model.TaskType, error) {
	if name == "" {
		return nil, fmt.Errorf("task name is required")
	}

	var taskType model.TaskType
	db := r.db.WithContext(ctx)
	err := db.Where("task_name = ?", name).First(&taskType).Error
	switch {
	case err == nil:
		return &taskType, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		taskType = model.TaskType{TaskName: name, MonetaryValue: value}
		if err := db.Create(&taskType).Error; err != nil {
			return nil, fmt.Errorf("create task type: %w", err)
		}
		return &taskType, nil
	default:
		return nil, fmt.Errorf("find task type: %w", err)
	}
}

func (r *TaskTypeRepository) List(ctx context.Context) ([]model.TaskType, error) {
	var types []model.TaskType
	if err := r.db.WithContext(ctx).Order("task_name ASC").Find(&types).Error; err != nil {
		return nil, fmt.Errorf("list task types: %w", err)
	}
	return types, nil
}
