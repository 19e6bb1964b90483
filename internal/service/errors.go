package service

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidPin   = errors.New("invalid pin")
	ErrPinFormat    = errors.New("pin must be 4 to 8 digits")
	ErrForbidden    = errors.New("reviewer role required")
)
