package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/backoffice/internal/auth"
	"github.com/josh-kwaku/backoffice/internal/config"
)

func newTokenCommand() *cobra.Command {
	var operator string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for an operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			operator = strings.TrimSpace(operator)
			if operator == "" {
				return errors.New("--operator must not be empty")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}

			cfg, err := config.LoadAuth()
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(operator, cfg.JWTSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "operator name (required)")
	_ = cmd.MarkFlagRequired("operator")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
