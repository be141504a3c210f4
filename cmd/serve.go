package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/velorisk/riskmap/internal/dashboard"
	"github.com/velorisk/riskmap/internal/dataset"
	"github.com/velorisk/riskmap/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the risk map dashboard",
	Long:  "Loads both risk models, then serves the dashboard page, the deck.gl specs, GeoJSON, legends and chart images over HTTP.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "HTTP server port (0 uses server.port)")
	serveCmd.Flags().String("layout", "", "dashboard layout YAML (empty uses the built-in layout)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Server.Port = port
	}
	layoutPath := cfg.Assets.LayoutFile
	if p, _ := cmd.Flags().GetString("layout"); p != "" {
		layoutPath = p
	}

	handler, err := buildDashboard(ctx, layoutPath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zap.L().Info("starting dashboard", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return eris.Wrap(err, "dashboard server")
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "dashboard shutdown")
	}
	return nil
}

// buildDashboard prepares both models and returns the dashboard router.
func buildDashboard(ctx context.Context, layoutPath string) (http.Handler, error) {
	layout, err := dashboard.LoadLayout(layoutPath)
	if err != nil {
		return nil, err
	}

	loader := dataset.NewLoader(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	datasets, err := prepareModels(ctx, cfg, loader)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(nil)
	if err != nil {
		return nil, err
	}

	s, err := dashboard.New(dashboard.Options{
		Config:   cfg,
		Datasets: datasets,
		Layout:   layout,
		Metrics:  m,
	})
	if err != nil {
		return nil, err
	}
	return s.Router(), nil
}
