package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/qrcode"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

func newQRCmd() *cobra.Command {
	var (
		uri     string
		secret  string
		account string
		issuer  string
	)

	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Render a provisioning QR code in the terminal",
		Long: "Renders an otpauth:// provisioning URI as a QR code using terminal block characters. " +
			"Pass --uri directly, or --secret and --account to build one with the configured issuer.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if uri == "" {
				if secret == "" || account == "" {
					return errors.New("either --uri or both --secret and --account are required")
				}
				if issuer == "" {
					var cfg twofactor.Config
					if err := config.Load(&cfg); err != nil {
						return err
					}
					issuer = cfg.Issuer
				}

				var err error
				uri, err = totp.URI(totp.Params{Secret: secret, AccountName: account, Issuer: issuer})
				if err != nil {
					return err
				}
			}

			art, err := qrcode.Terminal(uri)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", art, uri)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&uri, "uri", "", "otpauth:// provisioning URI")
	flags.StringVar(&secret, "secret", "", "Base32 TOTP secret")
	flags.StringVar(&account, "account", "", "account label, usually the email address")
	flags.StringVar(&issuer, "issuer", "", "issuer name (default TWOFACTOR_ISSUER)")
	return cmd
}
