package backupcode

import "errors"

var (
	ErrInvalidCount     = errors.New("invalid backup code count, must be greater than 0")
	ErrFailedToGenerate = errors.New("failed to generate backup code")
	ErrFailedToHash     = errors.New("failed to hash backup code")
	ErrInvalidCost      = errors.New("invalid bcrypt cost")
)
