package twofactor

import (
	"log/slog"
	"time"
)

// Option customizes the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for TOTP checks and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReplayGuard rejects TOTP codes whose time step was already accepted
// for the same user.
func WithReplayGuard(g ReplayGuard) Option {
	return func(s *Service) {
		s.replay = g
	}
}

// WithRenderer replaces the provisioning image renderer. The function receives
// the provisioning URI and the configured size and returns an image data URI.
func WithRenderer(render func(uri string, size int) (string, error)) Option {
	return func(s *Service) {
		if render != nil {
			s.render = render
		}
	}
}
