package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func newCodeCmd() *cobra.Command {
	var (
		secret string
		at     string
	)

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Print the current TOTP code for a secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return errors.New("--secret is required")
			}

			var cfg twofactor.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}

			now := time.Now()
			if at != "" {
				t, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at value: %w", err)
				}
				now = t
			}

			code, err := totp.Code(secret, now, totp.WithPeriod(cfg.TOTPPeriod))
			if err != nil {
				return err
			}

			period := int64(cfg.TOTPPeriod / time.Second)
			remaining := period - now.Unix()%period
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (valid for %ds)\n", code, remaining)
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Base32 TOTP secret")
	cmd.Flags().StringVar(&at, "at", "", "RFC 3339 time to compute the code for (default now)")
	return cmd
}
