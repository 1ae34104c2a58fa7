package main

import (
	"os"

	"github.com/spf13/cobra"
	log "github.com/sirupsen/logrus"

	"github.com/tcp_snm/deepshift/internal/config"
)

var configPath string

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = config.DefaultPath
	}

	cmd := &cobra.Command{
		Use:          "deepshift",
		Short:        "Contest hosting backend: registrations, proctored attempts, grading and results",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newTokenCmd())
	return cmd
}

// loadConfig reads the config and applies its logging section.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	cfg.ConfigureLogging()
	return cfg, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
