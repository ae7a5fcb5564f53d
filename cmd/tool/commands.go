package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/config"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/security"
)

// loadConfig is replaced in tests.
var loadConfig = config.Load

const jwtIssuer = "account-service"

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "account-tool",
		Short:        "Developer helpers for the account service",
		SilenceUsage: true,
	}

	cmd.AddCommand(newActivationLinkCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newHashPasswordCmd())
	return cmd
}

type identityFlags struct {
	userID string
	email  string
}

func (f *identityFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.userID, "user-id", "", "user id (required)")
	cmd.Flags().StringVar(&f.email, "email", "", "user email")
	_ = cmd.MarkFlagRequired("user-id")
}

func newIssuer() (*config.Config, *security.JWTIssuer, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, security.NewJWTIssuer(cfg.JWTSecret, jwtIssuer, security.TTLs{
		Access:     cfg.AccessTokenTTL,
		Refresh:    cfg.RefreshTokenTTL,
		Activation: cfg.ActivationTokenTTL,
	}), nil
}

func newActivationLinkCmd() *cobra.Command {
	id := &identityFlags{}
	cmd := &cobra.Command{
		Use:   "activation-link",
		Short: "Print an activation confirm link for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, issuer, err := newIssuer()
			if err != nil {
				return err
			}
			tok, err := issuer.Issue(id.userID, id.email, accounts.TokenActivation)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.ActivationBaseURL+tok)
			return err
		},
	}
	id.register(cmd)
	return cmd
}

func newTokenCmd() *cobra.Command {
	id := &identityFlags{}
	var typ string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed JWT (access, refresh or activation)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tt := accounts.TokenType(typ)
			switch tt {
			case accounts.TokenAccess, accounts.TokenRefresh, accounts.TokenActivation:
			default:
				return fmt.Errorf("unknown token type %q", typ)
			}

			_, issuer, err := newIssuer()
			if err != nil {
				return err
			}
			tok, err := issuer.Issue(id.userID, id.email, tt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	id.register(cmd)
	cmd.Flags().StringVar(&typ, "type", string(accounts.TokenAccess), "token type: access, refresh or activation")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for seeding users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := security.NewBcryptHasher(cost).Hash(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
