package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmptyUpdate        = errors.New("no fields to update")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound  = errors.New("user not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrTokenNotFound = errors.New("auth token not found")
	ErrLeadNotFound  = errors.New("lead not found")
)
