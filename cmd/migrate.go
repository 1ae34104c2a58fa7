package main

import (
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tcp_snm/deepshift/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("database url not configured, set DB_URL")
			}

			applied, err := database.Migrate(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			log.Infof("%d migrations applied", applied)
			return nil
		},
	}
}
