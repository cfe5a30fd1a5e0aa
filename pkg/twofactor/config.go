package twofactor

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds the tunables of the two-factor service. Field tags allow
// loading it with github.com/caarlos0/env.
type Config struct {
	Issuer          string        `env:"TWOFACTOR_ISSUER" envDefault:"SkyBooker"`     // Issuer shown in authenticator apps
	TOTPWindow      int           `env:"TWOFACTOR_TOTP_WINDOW" envDefault:"2"`        // Accepted steps on each side of now
	TOTPPeriod      time.Duration `env:"TWOFACTOR_TOTP_PERIOD" envDefault:"30s"`      // TOTP time step
	BackupCodeCount int           `env:"TWOFACTOR_BACKUP_CODE_COUNT" envDefault:"10"` // Codes issued per batch
	BackupCodeCost  int           `env:"TWOFACTOR_BACKUP_CODE_COST" envDefault:"10"`  // bcrypt cost for backup code hashes
	QRCodeSize      int           `env:"TWOFACTOR_QR_SIZE" envDefault:"256"`          // Provisioning image size in pixels
	EncryptionKey   string        `env:"TWOFACTOR_ENCRYPTION_KEY"`                    // Optional base64 AES-256 key for secrets at rest
	SaveAttempts    int           `env:"TWOFACTOR_SAVE_ATTEMPTS" envDefault:"3"`      // Compare-and-swap attempts per operation
}

// DefaultConfig returns the same values the env defaults produce.
func DefaultConfig() Config {
	return Config{
		Issuer:          "SkyBooker",
		TOTPWindow:      2,
		TOTPPeriod:      30 * time.Second,
		BackupCodeCount: 10,
		BackupCodeCost:  bcrypt.DefaultCost,
		QRCodeSize:      256,
		SaveAttempts:    3,
	}
}

// Validate checks the configuration for values the service cannot work with.
func (c Config) Validate() error {
	switch {
	case c.Issuer == "":
		return fmt.Errorf("%w: issuer is required", ErrInvalidConfig)
	case c.TOTPWindow < 0:
		return fmt.Errorf("%w: totp window must not be negative, got %d", ErrInvalidConfig, c.TOTPWindow)
	case c.TOTPPeriod < time.Second:
		return fmt.Errorf("%w: totp period must be at least 1s, got %v", ErrInvalidConfig, c.TOTPPeriod)
	case c.TOTPPeriod%time.Second != 0:
		return fmt.Errorf("%w: totp period must be a whole number of seconds, got %v", ErrInvalidConfig, c.TOTPPeriod)
	case c.BackupCodeCount < 1:
		return fmt.Errorf("%w: backup code count must be positive, got %d", ErrInvalidConfig, c.BackupCodeCount)
	case c.BackupCodeCost < bcrypt.MinCost || c.BackupCodeCost > bcrypt.MaxCost:
		return fmt.Errorf("%w: backup code cost out of range, got %d", ErrInvalidConfig, c.BackupCodeCost)
	case c.SaveAttempts < 1:
		return fmt.Errorf("%w: save attempts must be positive, got %d", ErrInvalidConfig, c.SaveAttempts)
	}
	return nil
}
