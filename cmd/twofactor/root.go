package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/logger"
)

type rootOptions struct {
	envFiles  []string
	logLevel  string
	logFormat string

	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "twofactor",
		Short:        "Operator tooling for two-factor authentication",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(opts.envFiles...); err != nil {
				return err
			}
			switch logger.Format(opts.logFormat) {
			case logger.FormatJSON, logger.FormatText:
			default:
				return fmt.Errorf("invalid --log-format %q", opts.logFormat)
			}
			opts.log = logger.New(
				logger.WithLevel(logger.ParseLevel(opts.logLevel)),
				logger.WithFormat(logger.Format(opts.logFormat)),
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithService("twofactor"),
			)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVar(&opts.envFiles, "env-file", nil, "additional .env files to load")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", string(logger.FormatText), "log format: text or json")

	cmd.AddCommand(
		newKeygenCmd(),
		newCodeCmd(),
		newQRCmd(),
		newMigrateCmd(opts),
	)
	return cmd
}
