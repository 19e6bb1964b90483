package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaskType is a chore from the household catalogue, with its reward.
type TaskType struct {
	ID            uint            `gorm:"primaryKey"`
	TaskName      string          `gorm:"uniqueIndex"`
	MonetaryValue decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Tasks         []Task `gorm:"foreignKey:TaskTypeID"`
}
