package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/app"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/store"
)

// historyKeep bounds the request log kept between runs.
const historyKeep = 1000

// runApp opens the request log, builds the API client, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	forms, err := catalog.Default()
	if err != nil {
		return fmt.Errorf("load form catalog: %w", err)
	}

	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.APITimeout),
		api.WithToken(cfg.Token),
		api.WithLogger(logger),
	)
	deps := app.Deps{
		Config:    cfg,
		Requester: client,
		Catalog:   forms,
	}
	if noSplash, _ := cmd.Flags().GetBool("no-splash"); !noSplash {
		deps.Splash = true
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("create DB dir: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		repo := st.EventRepo()
		if err := repo.Prune(ctx, historyKeep); err != nil {
			logger.Warn("prune request log", "error", err)
		}
		deps.EventRepo = repo
		deps.Requester = api.WithRecording(client, repo)
	}

	logger.Info("starting", "api", cfg.APIURL, "history", dbPath)
	return app.Run(deps)
}
