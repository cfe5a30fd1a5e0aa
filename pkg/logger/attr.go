package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records the event name under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Remaining records how many backup codes are still unused.
func Remaining(n int) slog.Attr {
	return slog.Int("remaining_backup_codes", n)
}

// Attempt records the attempt number of a retried operation.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}
