package twofactor

import (
	"context"
	"time"
)

// Store persists accounts' two-factor records. Implementations must provide
// the two atomic primitives below; the service never holds records in memory
// between calls.
type Store interface {
	// GetAccount returns the account or ErrUserNotFound.
	GetAccount(ctx context.Context, userID string) (*Account, error)

	// SaveTwoFactor replaces the record only if the stored version still equals
	// record.Version, storing it with Version+1. Returns ErrVersionConflict when
	// the record changed since it was read and ErrUserNotFound for unknown users.
	SaveTwoFactor(ctx context.Context, userID string, record Record) error

	// ClaimBackupCode marks the entry with hashedCode as used if, and only if,
	// it exists and is still unused, in a single conditional write. It reports
	// whether this call performed the transition.
	ClaimBackupCode(ctx context.Context, userID, hashedCode string, usedAt time.Time) (bool, error)
}

// PasswordVerifier checks an account password. It is owned by the account
// subsystem; the two-factor core only consumes it.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID, password string) (bool, error)
}

// PasswordVerifierFunc adapts a function to PasswordVerifier.
type PasswordVerifierFunc func(ctx context.Context, userID, password string) (bool, error)

func (f PasswordVerifierFunc) VerifyPassword(ctx context.Context, userID, password string) (bool, error) {
	return f(ctx, userID, password)
}

// ReplayGuard records accepted TOTP time steps so a code cannot be used twice.
type ReplayGuard interface {
	// Claim returns true the first time a (userID, counter) pair is seen within ttl.
	Claim(ctx context.Context, userID string, counter int64, ttl time.Duration) (bool, error)
}
