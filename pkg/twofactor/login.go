package twofactor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

// VerifyForLogin checks the second factor presented at login. The code may be
// either a current TOTP code or one of the user's unused backup codes. A
// backup code is consumed atomically and can never succeed twice.
//
// Unknown users are reported as ErrInvalidCode so callers cannot probe for
// account existence through this step.
func (s *Service) VerifyForLogin(ctx context.Context, userID, code string) (*VerificationResult, error) {
	acc, err := s.load(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.WarnContext(ctx, "two-factor login for unknown user",
				logger.UserID(userID),
				logger.Component(component),
			)
			return nil, ErrInvalidCode
		}
		return nil, err
	}

	rec := acc.TwoFactor
	if !rec.IsEnabled {
		return nil, ErrNotEnabled
	}

	ok, err := s.verifyTOTP(ctx, userID, rec.Secret, code)
	if err != nil {
		return nil, err
	}
	if ok {
		s.logger.InfoContext(ctx, "two-factor login verified",
			logger.UserID(userID),
			logger.Component(component),
		)
		return &VerificationResult{}, nil
	}

	// Shorter inputs pass the format check but can never match an issued code.
	if backupcode.Valid(code) && len(backupcode.Normalize(code)) == backupcode.Length {
		result, err := s.redeemBackupCode(ctx, userID, rec, code)
		if err != nil || result != nil {
			return result, err
		}
	}

	s.logger.WarnContext(ctx, "invalid two-factor login code",
		logger.UserID(userID),
		logger.Component(component),
	)
	return nil, ErrInvalidCode
}

// verifyTOTP reports whether code matches the confirmed secret and, when a
// replay guard is configured, whether its time step was not used before.
func (s *Service) verifyTOTP(ctx context.Context, userID, stored, code string) (bool, error) {
	secret, err := s.open(stored)
	if err != nil {
		return false, fmt.Errorf("failed to open two-factor secret: %w", err)
	}

	counter, ok := totp.Match(code, secret, s.now(), s.totpOptions()...)
	if !ok {
		return false, nil
	}
	if s.replay == nil {
		return true, nil
	}

	// A code stays valid for 2*window+1 steps; the claim must outlive all of them.
	ttl := time.Duration(2*s.cfg.TOTPWindow+1) * s.cfg.TOTPPeriod
	fresh, err := s.replay.Claim(ctx, userID, counter, ttl)
	if err != nil {
		return false, fmt.Errorf("failed to record totp step: %w", err)
	}
	if !fresh {
		s.logger.WarnContext(ctx, "replayed totp code rejected",
			logger.UserID(userID),
			logger.Component(component),
		)
	}
	return fresh, nil
}

// redeemBackupCode finds the first unused entry matching code and claims it.
// A nil result with a nil error means no entry matched.
func (s *Service) redeemBackupCode(ctx context.Context, userID string, rec Record, code string) (*VerificationResult, error) {
	for _, entry := range rec.BackupCodes {
		if entry.Used || !backupcode.Verify(code, entry.HashedCode) {
			continue
		}

		claimed, err := s.store.ClaimBackupCode(ctx, userID, entry.HashedCode, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to claim backup code: %w", err)
		}
		if !claimed {
			// Consumed concurrently by another login.
			return nil, nil
		}

		remaining := rec.UnusedBackupCodes() - 1
		if acc, err := s.store.GetAccount(ctx, userID); err == nil {
			remaining = acc.TwoFactor.UnusedBackupCodes()
		}

		s.logger.InfoContext(ctx, "backup code consumed",
			logger.UserID(userID),
			logger.Component(component),
			logger.Remaining(remaining),
		)
		return &VerificationResult{UsedBackupCode: true, RemainingBackupCodes: remaining}, nil
	}
	return nil, nil
}
