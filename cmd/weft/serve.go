package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
	httpAdapter "github.com/aretw0/weft/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo HTTP API",
	Long:  `Serves the user/order demo API. Every handler reaches its service through interception proxies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.NewRuntime(ctx, cfg, logger, cli.Options{})
		if err != nil {
			return err
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := rt.Close(closeCtx); err != nil {
				logger.Warn("sink shutdown incomplete", "error", err)
			}
		}()

		opts := []httpAdapter.Option{httpAdapter.WithLogger(logger)}
		if cfg.Server.Validate {
			doc, err := httpAdapter.LoadSpec(ctx)
			if err != nil {
				return err
			}
			opts = append(opts, httpAdapter.WithValidation(doc))
		}
		if rt.Registry != nil {
			opts = append(opts, httpAdapter.WithMetrics(cfg.Metrics.Path, promhttp.HandlerFor(rt.Registry, promhttp.HandlerOpts{})))
		}

		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           httpAdapter.NewHandler(rt.App, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			tui.PrintBanner(cmd.ErrOrStderr())
			logger.Info("starting weft server", "addr", srv.Addr, "rules", len(rt.Engine.Rules()))
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutdown signal received")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("weft server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides server.addr)")
}
