package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/carmarket/carmarket/internal/config"
	"github.com/carmarket/carmarket/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "carmarket",
	Short: "Terminal client for the CarMarket marketplace",
	Long:  "CarMarket — terminal client for the car marketplace: registration, verification, payments, support and moderation.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "", "Backend base URL (overrides "+config.EnvAPIURL+")")
	flags.String("db", "", "Path to the request log database (overrides "+config.EnvDB+")")
	flags.String("log", "", "Write structured logs to this file (overrides "+config.EnvLog+")")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.Bool("no-history", false, "Do not record backend calls")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(formsCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers flags over the environment and .env file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log"); v != "" {
		cfg.LogPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the request log path from cfg, where --db already
// overrides CARMARKET_DB, falling back to the default XDG path. It returns ""
// when history is disabled.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if off, _ := cmd.Flags().GetBool("no-history"); off {
		return "", nil
	}
	return cfg.ResolveDBPath()
}

// setupLogging installs the file logger from cfg.
func setupLogging(cfg config.Config) (*slog.Logger, func() error, error) {
	logger, closeFn, err := logging.Setup(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logging: %w", err)
	}
	return logger, closeFn, nil
}
