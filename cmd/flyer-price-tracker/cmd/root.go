// Package cmd implements the CLI commands for flyer-price-tracker.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/flyer-price-tracker/internal/config"
	"github.com/donaldgifford/flyer-price-tracker/pkg/logger"
)

var (
	cfgFile  string
	envFiles []string
)

var rootCmd = &cobra.Command{
	Use:   "flyer-price-tracker",
	Short: "Compare grocery flyer prices across stores",
	Long: "An API-first service that collects weekly grocery flyers from Flipp, normalizes " +
		"item quantities into comparable unit prices, and ranks products so the best deal comes first.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before the config")

	rootCmd.AddCommand(versionCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the root command, for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// loadConfig reads dotenv files and the config file, then builds the root
// logger from the logging settings.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if err := config.LoadEnv(envFiles...); err != nil {
		return nil, nil, err
	}

	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)
	return cfg, log, nil
}
