package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"HeroCatalog/internal/auth"
)

var errNoSecret = errors.New("auth.jwt_secret is not configured")

func newTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the write routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Auth.JWTSecret == "" {
				return errNoSecret
			}
			if role != auth.RoleEditor && role != auth.RoleViewer {
				return fmt.Errorf("unknown role %q", role)
			}
			tm, err := auth.NewTokenMaker(a.cfg.Auth.JWTSecret)
			if err != nil {
				return err
			}

			if ttl <= 0 {
				ttl = a.cfg.Auth.TokenTTL
			}
			tok, err := tm.New(subject, role, ttl)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "token subject")
	cmd.Flags().StringVar(&role, "role", auth.RoleEditor, "token role (editor or viewer)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default auth.token_ttl)")

	return cmd
}
