package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FilipeAphrody/vocalgate/pkg/security"
)

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an operator password for OPERATOR_PASSWORD_HASH",
		Long: `Read a password from the first line of stdin and print its argon2id
hash in the form expected by OPERATOR_PASSWORD_HASH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("no password on stdin")
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password must not be empty")
			}
			hash, err := security.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newTOTPSecretCmd() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "totp-secret",
		Short: "Generate a TOTP secret for OPERATOR_TOTP_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := security.GenerateMFASecret()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\nuri:    %s\n", secret, security.GetMFAQRCodeURI(account, secret))
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "operator", "account name shown in the authenticator app")
	return cmd
}
