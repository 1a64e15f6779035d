package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/carmarket/carmarket/internal/config"
	"github.com/carmarket/carmarket/internal/logging"
	"github.com/carmarket/carmarket/internal/stubapi"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve an in-memory backend for local development",
	Long: `Run a local backend with demo data so the client can be used offline.

Every verification code is ` + stubapi.DevCode + `. The demo account is
` + stubapi.DemoPhone + ` / ` + stubapi.DemoPassword + `.`,
	RunE: runStub,
}

func init() {
	stubCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address")
}

func runStub(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	srv := &http.Server{
		Addr:              addr,
		Handler:           stubapi.New(stubapi.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("stub backend listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
