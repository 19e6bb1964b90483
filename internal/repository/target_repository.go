package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chore-board/internal/model"
)

// TargetRepository stores monthly reward targets.
type TargetRepository struct {
	db *gorm.DB
}

func NewTargetRepository(db *gorm.DB) *TargetRepository {
	return &TargetRepository{db: db}
}

// Find returns the target for userID in month (YYYY-MM). A missing row yields a zero target.
func (r *TargetRepository) Find(ctx context.Context, userID uint, month string) (model.MonthlyTarget, error) {
	var target model.MonthlyTarget
	err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&target).Error
	switch {
	case err == nil:
		return target, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return model.MonthlyTarget{UserID: userID, Month: month}, nil
	default:
		return target, fmt.Errorf("find monthly target: %w", err)
	}
}

// SetTarget creates or updates the target amount for a month.
func (r *TargetRepository) SetTarget(ctx context.Context, userID uint, month string, amount decimal.Decimal) error {
	target := model.MonthlyTarget{UserID: userID, Month: month, TargetAmount: amount}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_amount", "updated_at"}),
	}).Create(&target).Error
	if err != nil {
		return fmt.Errorf("set monthly target: %w", err)
	}
	return nil
}

// SetAchieved records the recomputed achieved amount.
func (r *TargetRepository) SetAchieved(ctx context.Context, userID uint, month string, amount decimal.Decimal) error {
	err := r.db.WithContext(ctx).Model(&model.MonthlyTarget{}).
		Where("user_id = ? AND month = ?", userID, month).
		Update("achieved_amount", amount).Error
	if err != nil {
		return fmt.Errorf("set achieved amount: %w", err)
	}
	return nil
}
