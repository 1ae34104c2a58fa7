package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tcp_snm/deepshift/internal/database"
	"github.com/tcp_snm/deepshift/internal/service"
)

// newTokenCmd mints bearer tokens for local runs, where no identity service
// is around to issue them.
func newTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("jwt secret not configured, set JWT_SECRET")
			}

			id := uuid.New()
			if subject != "" {
				if id, err = uuid.Parse(subject); err != nil {
					return fmt.Errorf("invalid subject %q: %w", subject, err)
				}
			}
			r := database.UserRole(role)
			switch r {
			case database.RoleStudent, database.RoleCreator, database.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			tok, err := service.IssueToken([]byte(cfg.Auth.JWTSecret), id, r, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subject: %s\ntoken: %s\n", id, tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "user id, random when empty")
	cmd.Flags().StringVar(&role, "role", string(database.RoleStudent), "student, creator or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
