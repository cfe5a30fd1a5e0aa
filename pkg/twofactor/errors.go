package twofactor

import "errors"

// Business rule rejections. All of them are safe to surface to the caller.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyEnabled     = errors.New("two-factor authentication is already enabled")
	ErrNotEnabled         = errors.New("two-factor authentication is not enabled")
	ErrSetupNotInProgress = errors.New("two-factor setup is not in progress")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrRender             = errors.New("failed to render provisioning image")
)

// Infrastructure errors.
var (
	ErrVersionConflict = errors.New("two-factor record was modified concurrently")
	ErrInvalidConfig   = errors.New("invalid two-factor configuration")
	ErrAccountExists   = errors.New("account already exists")
)
