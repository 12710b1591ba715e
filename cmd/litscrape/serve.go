package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/henrybloomingdale/litscrape/internal/observability"
	"github.com/henrybloomingdale/litscrape/internal/suggest"
	"github.com/henrybloomingdale/litscrape/internal/web"
)

const shutdownTimeout = 10 * time.Second

var flagListen string

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (overrides ui.listen_addr)")
	rootCmd.AddCommand(serveCmd)
}

// serveCmd implements the serve subcommand.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search page in the browser",
	Long: `Run a local web page with the keyword and clinical search forms, the
sortable result table, record details and the export/download actions.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(cfg.Metrics.Namespace)
	}

	addr := cfg.UI.ListenAddr
	if flagListen != "" {
		addr = flagListen
	}

	srv, err := web.NewServer(web.Config{
		Address:         addr,
		PageSize:        cfg.UI.PageSize,
		ReadTimeout:     30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: shutdownTimeout,
	}, newAPIClient(logger, metrics),
		web.WithLogger(logger),
		web.WithMetrics(metrics),
		web.WithSuggestOptions(
			suggest.WithTriggerKey(cfg.Suggest.TriggerKey),
			suggest.WithDelay(cfg.Suggest.Delay),
		),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	fmt.Fprintf(stderr, "Serving on http://%s (scraping server %s)\n", addr, cfg.Server.BaseURL)

	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
