package twofactor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
)

const component = "twofactor"

// Service drives two-factor enrollment and login-time verification.
// It is safe for concurrent use; all per-user coordination happens in the Store.
type Service struct {
	store     Store
	passwords PasswordVerifier
	cfg       Config
	key       []byte // AES-256 key for secrets at rest, nil when disabled

	logger *slog.Logger
	now    func() time.Time
	render func(uri string, size int) (string, error)
	replay ReplayGuard
}

// NewService creates the two-factor service.
func NewService(store Store, passwords PasswordVerifier, cfg Config, opts ...Option) (*Service, error) {
	if store == nil || passwords == nil {
		return nil, fmt.Errorf("%w: store and password verifier are required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		store:     store,
		passwords: passwords,
		cfg:       cfg,
		logger:    logger.Discard(),
		now:       time.Now,
		render:    qrcode.DataURI,
	}

	if cfg.EncryptionKey != "" {
		key, err := totp.ParseEncryptionKey(cfg.EncryptionKey)
		if err != nil {
			return nil, errors.Join(ErrInvalidConfig, err)
		}
		s.key = key
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// BeginSetup starts enrollment: it generates a new secret, stores it as the
// pending secret and returns it with its provisioning URI and QR image.
//
// If only the image fails to render, the pending secret is kept and the result
// is returned together with an error wrapping ErrRender so the caller can offer
// manual entry of the secret.
func (s *Service) BeginSetup(ctx context.Context, userID string) (*SetupResult, error) {
	var secret, uri string

	_, err := s.update(ctx, userID, func(acc *Account) error {
		rec := &acc.TwoFactor
		if _, err := rec.State().Next(EventBeginSetup); err != nil {
			return err
		}

		if secret == "" {
			var err error
			if secret, err = totp.GenerateSecret(); err != nil {
				return err
			}
			if uri, err = totp.URI(totp.Params{
				Secret:      secret,
				AccountName: accountLabel(acc),
				Issuer:      s.cfg.Issuer,
			}); err != nil {
				return err
			}
		}

		sealed, err := s.seal(secret)
		if err != nil {
			return err
		}
		now := s.now()
		rec.TempSecret = sealed
		rec.CreatedAt = &now
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "two-factor setup rejected",
			logger.UserID(userID),
			logger.Component(component),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "two-factor setup started",
		logger.UserID(userID),
		logger.Component(component),
		logger.Event(string(EventBeginSetup)),
	)

	result := &SetupResult{Secret: secret, ProvisioningURI: uri}
	image, err := s.render(uri, s.cfg.QRCodeSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render provisioning image",
			logger.UserID(userID),
			logger.Component(component),
			logger.Error(err),
		)
		return result, errors.Join(ErrRender, err)
	}
	result.ProvisioningImage = image
	return result, nil
}

// ConfirmSetup checks code against the pending secret and, on success, enables
// two-factor authentication and issues a fresh batch of backup codes. The
// returned codes are formatted for display and are not retrievable later.
func (s *Service) ConfirmSetup(ctx context.Context, userID, code string) ([]string, error) {
	var codes []backupcode.Code

	_, err := s.update(ctx, userID, func(acc *Account) error {
		rec := &acc.TwoFactor
		if _, err := rec.State().Next(EventConfirmSetup); err != nil {
			return err
		}

		secret, err := s.open(rec.TempSecret)
		if err != nil {
			return err
		}
		if _, ok := totp.Match(code, secret, s.now(), s.totpOptions()...); !ok {
			return ErrInvalidCode
		}

		if codes == nil {
			if codes, err = s.generateBackupCodes(); err != nil {
				return err
			}
		}

		now := s.now()
		rec.Secret = rec.TempSecret
		rec.TempSecret = ""
		rec.IsEnabled = true
		rec.EnabledAt = &now
		rec.BackupCodes = entries(codes, now)
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "two-factor confirmation rejected",
			logger.UserID(userID),
			logger.Component(component),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "two-factor enabled",
		logger.UserID(userID),
		logger.Component(component),
		logger.Event(string(EventConfirmSetup)),
	)
	return backupcode.Format(backupcode.Plain(codes)), nil
}

// Disable turns two-factor authentication off after re-checking the account
// password, discarding the secret and all backup codes.
func (s *Service) Disable(ctx context.Context, userID, password string) error {
	checked := false

	_, err := s.update(ctx, userID, func(acc *Account) error {
		rec := &acc.TwoFactor
		if _, err := rec.State().Next(EventDisable); err != nil {
			return err
		}
		if !checked {
			if err := s.checkPassword(ctx, userID, password); err != nil {
				return err
			}
			checked = true
		}

		now := s.now()
		rec.IsEnabled = false
		rec.Secret = ""
		rec.TempSecret = ""
		rec.BackupCodes = nil
		rec.DisabledAt = &now
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "two-factor disable rejected",
			logger.UserID(userID),
			logger.Component(component),
			logger.Error(err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "two-factor disabled",
		logger.UserID(userID),
		logger.Component(component),
		logger.Event(string(EventDisable)),
	)
	return nil
}

// RegenerateBackupCodes replaces every stored backup code with a new batch
// after re-checking the account password.
func (s *Service) RegenerateBackupCodes(ctx context.Context, userID, password string) ([]string, error) {
	checked := false
	var codes []backupcode.Code

	_, err := s.update(ctx, userID, func(acc *Account) error {
		rec := &acc.TwoFactor
		if _, err := rec.State().Next(EventRegenerate); err != nil {
			return err
		}
		if !checked {
			if err := s.checkPassword(ctx, userID, password); err != nil {
				return err
			}
			checked = true
		}

		if codes == nil {
			var err error
			if codes, err = s.generateBackupCodes(); err != nil {
				return err
			}
		}
		rec.BackupCodes = entries(codes, s.now())
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "backup code regeneration rejected",
			logger.UserID(userID),
			logger.Component(component),
			logger.Error(err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "backup codes regenerated",
		logger.UserID(userID),
		logger.Component(component),
		logger.Event(string(EventRegenerate)),
	)
	return backupcode.Format(backupcode.Plain(codes)), nil
}

// Status reports the user's two-factor configuration without modifying it.
func (s *Service) Status(ctx context.Context, userID string) (*Status, error) {
	acc, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := acc.TwoFactor
	return &Status{
		IsEnabled:             rec.IsEnabled,
		EnabledAt:             cloneTime(rec.EnabledAt),
		HasBackupCodes:        len(rec.BackupCodes) > 0,
		UnusedBackupCodeCount: rec.UnusedBackupCodes(),
	}, nil
}

// update loads the account, lets apply mutate the two-factor record and saves
// it with a compare-and-swap on Record.Version. When another writer got there
// first, apply runs again against the fresh record, so it must only depend on
// the account it is given and on values it memoizes itself.
func (s *Service) update(ctx context.Context, userID string, apply func(acc *Account) error) (*Account, error) {
	var err error
	for attempt := 1; attempt <= s.cfg.SaveAttempts; attempt++ {
		var acc *Account
		if acc, err = s.load(ctx, userID); err != nil {
			return nil, err
		}
		if err = apply(acc); err != nil {
			return nil, err
		}

		err = s.store.SaveTwoFactor(ctx, userID, acc.TwoFactor)
		if err == nil {
			return acc, nil
		}
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("failed to save two-factor record: %w", err)
		}

		s.logger.DebugContext(ctx, "two-factor record changed concurrently, retrying",
			logger.UserID(userID),
			logger.Component(component),
			logger.Attempt(attempt),
		)
	}
	return nil, err
}

func (s *Service) load(ctx context.Context, userID string) (*Account, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}
	acc, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return acc, nil
}

func (s *Service) checkPassword(ctx context.Context, userID, password string) error {
	if password == "" {
		return ErrInvalidPassword
	}
	ok, err := s.passwords.VerifyPassword(ctx, userID, password)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidPassword
	}
	return nil
}

func (s *Service) generateBackupCodes() ([]backupcode.Code, error) {
	return backupcode.Generate(s.cfg.BackupCodeCount, backupcode.WithCost(s.cfg.BackupCodeCost))
}

func (s *Service) totpOptions() []totp.Option {
	return []totp.Option{
		totp.WithWindow(s.cfg.TOTPWindow),
		totp.WithPeriod(s.cfg.TOTPPeriod),
	}
}

// seal prepares a secret for storage.
func (s *Service) seal(secret string) (string, error) {
	if s.key == nil {
		return secret, nil
	}
	return totp.EncryptSecret(secret, s.key)
}

// open reverses seal.
func (s *Service) open(stored string) (string, error) {
	if s.key == nil || stored == "" {
		return stored, nil
	}
	return totp.DecryptSecret(stored, s.key)
}

func entries(codes []backupcode.Code, now time.Time) []BackupCodeEntry {
	out := make([]BackupCodeEntry, len(codes))
	for i, c := range codes {
		out[i] = BackupCodeEntry{HashedCode: c.Hash, CreatedAt: now}
	}
	return out
}

func accountLabel(acc *Account) string {
	if acc.Email != "" {
		return acc.Email
	}
	return acc.ID
}
