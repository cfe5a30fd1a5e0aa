// Package logger builds *slog.Logger instances with functional options and
// offers attribute helpers that keep key names consistent across packages.
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatText),
//		logger.WithLevel(logger.ParseLevel("debug")),
//		logger.WithService("twofactor"),
//	)
//	log.Info("two-factor enabled", logger.UserID(id), logger.Component("twofactor"))
//
// Attribute helpers such as Error return an empty slog.Attr for nil input, which
// slog drops from the output.
package logger
