package mongostore

import "errors"

var (
	ErrFailedToConnect   = errors.New("failed to connect to mongo")
	ErrHealthcheckFailed = errors.New("mongo healthcheck failed")
	ErrFailedToLoad      = errors.New("failed to load account")
	ErrFailedToSave      = errors.New("failed to save two-factor record")
	ErrFailedToClaim     = errors.New("failed to claim backup code")
)
