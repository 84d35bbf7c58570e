// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/arxsub/internal/platform/constants"
	"github.com/taibuivan/arxsub/internal/platform/sec"
)

func newTokenCommand(ctx *commandContext) *cobra.Command {
	var (
		user         sec.User
		role         string
		agentType    string
		timeToLive   time.Duration
		endorsements []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for local development",
		Example: `  submitctl token --user 1234 --forename Jane --surname Doe --email jane@example.org
  submitctl token --user classifier --role automation --agent-type automation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user.Role = sec.UserRole(role)
			if !user.Role.Valid() {
				return fmt.Errorf("unknown role %q", role)
			}
			user.AgentType = sec.AgentType(agentType)
			user.Endorsements = endorsements

			tokens, err := sec.NewTokenService(
				ctx.settings.GetString(keyPrivateKeyPath),
				ctx.settings.GetString(keyPublicKeyPath),
				constants.AuthIssuer,
			)
			if err != nil {
				return err
			}

			token, err := tokens.GenerateAccessToken(user, timeToLive)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"token":      token,
					"expires_in": int(timeToLive.Seconds()),
				})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&user.Identifier, "user", "", "User identifier (required)")
	flags.StringVar(&user.Username, "username", "", "Login name")
	flags.StringVar(&role, "role", string(sec.RoleSubmitter), "admin, moderator, automation or submitter")
	flags.StringVar(&agentType, "agent-type", string(sec.AgentUser), "user, automation or system")
	flags.StringVar(&user.Forename, "forename", "", "Forename")
	flags.StringVar(&user.Surname, "surname", "", "Surname")
	flags.StringVar(&user.Email, "email", "", "Contact email")
	flags.StringVar(&user.Affiliation, "affiliation", "", "Affiliation")
	flags.StringSliceVar(&endorsements, "endorse", nil, "Endorsed categories (repeatable)")
	flags.DurationVar(&timeToLive, "ttl", constants.DevTokenTTL, "Token lifetime")
	flags.String(keyPrivateKeyPath, "", "RSA private key (PEM)")
	flags.String(keyPublicKeyPath, "", "RSA public key (PEM)")
	_ = cmd.MarkFlagRequired("user")
	_ = ctx.settings.BindPFlag(keyPrivateKeyPath, flags.Lookup(keyPrivateKeyPath))
	_ = ctx.settings.BindPFlag(keyPublicKeyPath, flags.Lookup(keyPublicKeyPath))

	return cmd
}

func newKeygenCommand(ctx *commandContext) *cobra.Command {
	var (
		dir  string
		bits int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Write a fresh RSA key pair for signing development tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := rsa.GenerateKey(rand.Reader, bits)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
			if err != nil {
				return fmt.Errorf("encode public key: %w", err)
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			privatePath := filepath.Join(dir, "private.pem")
			publicPath := filepath.Join(dir, "public.pem")

			privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
			if err := os.WriteFile(privatePath, privatePEM, 0o600); err != nil {
				return err
			}
			publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
			if err := os.WriteFile(publicPath, publicPEM, 0o644); err != nil {
				return err
			}

			ctx.logger(cmd).Debug("keypair_written", "dir", dir, "bits", bits)

			if ctx.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), map[string]string{
					"private_key": privatePath,
					"public_key":  publicPath,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "JWT_PRIVATE_KEY_PATH=%s\nJWT_PUBLIC_KEY_PATH=%s\n", privatePath, publicPath)
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "./keys", "Output directory")
	cmd.Flags().IntVar(&bits, "bits", 2048, "Key size")

	return cmd
}
