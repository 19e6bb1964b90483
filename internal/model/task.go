package model

import (
	"time"

	"gorm.io/datatypes"
)

// Task is one stored occurrence of a chore for an assignee.
type Task struct {
	ID             uint           `gorm:"primaryKey"`
	TaskTypeID     uint           `gorm:"index"`
	TaskType       TaskType       `gorm:"foreignKey:TaskTypeID"`
	AssigneeID     uint           `gorm:"index:idx_assignee_start"`
	Assignee       User           `gorm:"foreignKey:AssigneeID"`
	Type           string         `gorm:"size:1"` // D, W or M
	StartDate      datatypes.Date `gorm:"index:idx_assignee_start"`
	PlannedDate    *datatypes.Date
	CompletionDate *time.Time
	ReviewedDate   *time.Time
	ReviewerID     *uint
	Reviewer       *User `gorm:"foreignKey:ReviewerID"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
