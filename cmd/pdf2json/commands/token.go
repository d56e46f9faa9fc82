package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shimizu-Technology/pdf2json/internal/config"
	"github.com/Shimizu-Technology/pdf2json/internal/middleware"
)

func newTokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
		secret  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for /api/v1/convert",
		Long: `Issue an HS256 token signed with JWT_SECRET (from the environment or .env).
Pass it to the API as "Authorization: Bearer <token>".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load()
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				secret = cfg.JWTSecret
			}
			if secret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			token, err := middleware.GenerateJWT(subject, secret, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "who the token is for (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", middleware.DefaultTokenTTL, "how long the token is valid")
	cmd.Flags().StringVar(&secret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	cmd.MarkFlagRequired("subject")

	return cmd
}
