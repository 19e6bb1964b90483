package model

import "time"

// Roles a household member can have.
const (
	RoleParent = "parent"
	RoleChild  = "child"
)

// User is a household member. PinHash holds a bcrypt hash of the PIN.
type User struct {
	ID         uint `gorm:"primaryKey"`
	FirstName  string
	LastName   string
	AvatarLink string
	Role       string `gorm:"index;default:child"`
	PinHash    string `json:"-"`
	TelegramID *int64 `gorm:"uniqueIndex"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayName joins first and last name.
func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
