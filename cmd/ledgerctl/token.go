package main

import (
	"fmt"
	"time"

	"github.com/SscSPs/statutory_ledger/internal/utils"
	"github.com/spf13/cobra"
)

// tokenCommands groups commands that mint credentials for the API.
func tokenCommands(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue API tokens and signing secrets",
	}
	cmd.AddCommand(tokenIssueCommand(app))
	cmd.AddCommand(tokenSecretCommand())
	return cmd
}

func tokenIssueCommand(app *cli) *cobra.Command {
	var (
		userID    string
		companies []string
		ttl       time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			signed, err := utils.GenerateJWT(userID, companies, app.cfg.JWTSecret, ttl, app.cfg.JWTIssuer)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id placed in the subject claim")
	cmd.Flags().StringSliceVar(&companies, "company", nil, "Company the token may access (repeatable, empty for all)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func tokenSecretCommand() *cobra.Command {
	var (
		size     int
		encoding string
	)
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Print a random value suitable for JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := utils.NewSigningSecret(size, utils.SecretEncoding(encoding))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", utils.MinSigningSecretBytes, "Number of random bytes")
	cmd.Flags().StringVar(&encoding, "encoding", string(utils.SecretHex), "Output encoding: hex or base64url")
	return cmd
}
