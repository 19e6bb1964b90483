package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chore-board/internal/model"
	"chore-board/internal/repository"
)

// AuthService verifies PINs and tracks authenticated sessions.
type AuthService struct {
	userRepo *repository.UserRepository
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]*Session
}

// Session is an authenticated actor bound to a chat.
type Session struct {
	UserID   uint
	LastSeen time.Time
}

func NewAuthService(userRepo *repository.UserRepository, timeout time.Duration) *AuthService {
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &AuthService{
		userRepo: userRepo,
		timeout:  timeout,
		now:      time.Now,
		sessions: make(map[int64]*Session),
	}
}

// HashPin validates and hashes a PIN for storage.
func HashPin(pin string) (string, error) {
	if !validPin(pin) {
		return "", ErrPinFormat
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

func validPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 8 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Register adds a household member with an initial PIN.
func (s *AuthService) Register(ctx context.Context, user model.User, pin string) (*model.User, error) {
	if strings.TrimSpace(user.FirstName) == "" {
		return nil, fmt.Errorf("first name is required")
	}
	switch user.Role {
	case "":
		user.Role = model.RoleChild
	case model.RoleParent, model.RoleChild:
	default:
		return nil, fmt.Errorf("unknown role %q", user.Role)
	}
	hash, err := HashPin(pin)
	if err != nil {
		return nil, err
	}
	user.PinHash = hash
	if err := s.userRepo.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Users lists everyone who can log in.
func (s *AuthService) Users(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

// VerifyPin checks pin against the stored hash of userID.
func (s *AuthService) VerifyPin(ctx context.Context, userID uint, pin string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.PinHash == "" {
		return nil, ErrInvalidPin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)); err != nil {
		return nil, ErrInvalidPin
	}
	return user, nil
}

// ChangePin replaces the PIN after verifying the current one.
func (s *AuthService) ChangePin(ctx context.Context, userID uint, currentPin, newPin string) error {
	if _, err := s.VerifyPin(ctx, userID, currentPin); err != nil {
		return err
	}
	hash, err := HashPin(newPin)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePinHash(ctx, userID, hash)
}

// Login verifies the PIN and opens a session for chatID.
func (s *AuthService) Login(ctx context.Context, chatID int64, userID uint, pin string) (*model.User, error) {
	user, err := s.VerifyPin(ctx, userID, pin)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.LinkTelegram(ctx, user.ID, chatID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sessions[chatID] = &Session{UserID: user.ID, LastSeen: s.now()}
	s.mu.Unlock()
	return user, nil
}

// Logout ends the chat's session.
func (s *AuthService) Logout(chatID int64) {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
}

// Actor returns the authenticated user of chatID, extending the session. Idle
// sessions expire after the configured timeout.
func (s *AuthService) Actor(ctx context.Context, chatID int64) (*model.User, bool) {
	s.mu.Lock()
	session, ok := s.sessions[chatID]
	if ok && s.now().Sub(session.LastSeen) > s.timeout {
		delete(s.sessions, chatID)
		ok = false
	}
	var userID uint
	if ok {
		session.LastSeen = s.now()
		userID = session.UserID
	}
	s.mu.Unlock()
	if !ok {
		return nil, false
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, false
	}
	return user, true
}
