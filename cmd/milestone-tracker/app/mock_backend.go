package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/stacklok/milestone-tracker/internal/api"
	"github.com/stacklok/milestone-tracker/internal/mockbackend"
)

func newMockBackendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock-backend",
		Short: "Serve an in-memory milestone backend",
		Long: `Serve the status and mark-completed endpoints from memory for local development.

Seed a first investment with:
  curl -X POST localhost:9090/admin/identities/IDENTITY/first-investment \
    -d '{"targetAsset":"BTC","amountUsd":25}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}

			store := mockbackend.NewStore(mockbackend.WithSettleDelay(v.GetDuration("settle-delay")))

			r := chi.NewRouter()
			r.Use(middleware.RequestID, middleware.Recoverer, api.LoggingMiddleware)
			r.Mount("/", mockbackend.Router(store))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveUntilDone(ctx, &http.Server{
				Addr:              v.GetString("address"),
				Handler:           r,
				ReadHeaderTimeout: serverReadTimeout,
			})
		},
	}

	cmd.Flags().String("address", ":9090", "Address to listen on")
	cmd.Flags().Duration("settle-delay", 0, "Delay before a seeded investment becomes visible")

	return cmd
}

func serveUntilDone(ctx context.Context, server *http.Server) error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Mock backend listening", "address", server.Addr)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
