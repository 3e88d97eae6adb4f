package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chunkloader/api"
	"chunkloader/preset"
	"chunkloader/session"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the editor API",
		Long:  "Start the HTTP and WebSocket API that browser editors use to build commands and save presets.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen != "" {
				a.cfg.Listen = listen
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config or :8080)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closer, err := a.cfg.Storage.OpenBackend(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	defer closer.Close()

	store := preset.NewStore(backend, preset.WithKey(a.cfg.Storage.Key))
	loaded := store.Initialize(ctx)

	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           api.RegisterRoutes(session.NewManager(), store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("chunkloader listening", "addr", srv.Addr, "storage", a.cfg.Storage.Backend, "presets", len(loaded))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
