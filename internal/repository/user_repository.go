package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"chore-board/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) UpdatePinHash(ctx context.Context, id uint, hash string) error {
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Update("pin_hash", hash).Error; err != nil {
		return fmt.Errorf("update pin: %w", err)
	}
	return nil
}

// LinkTelegram binds a chat account to the user, releasing it from any other user first.
func (r *UserRepository) LinkTelegram(ctx context.Context, id uint, telegramID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Where("telegram_id = ? AND id <> ?", telegramID, id).
			Update("telegram_id", nil).Error; err != nil {
			return fmt.Errorf("unlink telegram: %w", err)
		}
		if err := tx.Model(&model.User{}).Where("id = ?", id).Update("telegram_id", telegramID).Error; err != nil {
			return fmt.Errorf("link telegram: %w", err)
		}
		return nil
	})
}
