package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTarget is the reward goal for one user and month (YYYY-MM).
type MonthlyTarget struct {
	ID             uint            `gorm:"primaryKey"`
	UserID         uint            `gorm:"index:idx_user_month,unique"`
	Month          string          `gorm:"size:7;index:idx_user_month,unique"`
	TargetAmount   decimal.Decimal `gorm:"type:decimal(10,2)"`
	AchievedAmount decimal.Decimal `gorm:"type:decimal(10,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
