package service

import "errors"

var (
	ErrValidation         = errors.New("invalid request")
	ErrPasswordTooWeak    = errors.New("password too weak")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrThrottled          = errors.New("too many requests")

	// One-time code failures.
	ErrNoSecretPending = errors.New("no otp pending")
	ErrSecretExpired   = errors.New("otp expired")
	ErrSecretMismatch  = errors.New("invalid otp")
	ErrTooManyAttempts = errors.New("too many attempts")

	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
)
