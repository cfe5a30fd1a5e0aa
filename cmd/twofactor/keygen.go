package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/totp"
)

func newKeygenCmd() *cobra.Command {
	var secret bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an encryption key for TWOFACTOR_ENCRYPTION_KEY",
		Long: "Generates a random base64 AES-256 key used to encrypt TOTP secrets at rest. " +
			"With --totp-secret, generates a Base32 TOTP secret instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				out string
				err error
			)
			if secret {
				out, err = totp.GenerateSecret()
			} else {
				out, err = totp.GenerateEncodedEncryptionKey()
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&secret, "totp-secret", false, "generate a TOTP secret instead of an encryption key")
	return cmd
}
