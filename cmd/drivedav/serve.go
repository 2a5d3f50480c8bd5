package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/config"
	davhttp "github.com/sagarc03/drivedav/http"
	"github.com/sagarc03/drivedav/userbackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebDAV server",
	Long: `Start the drivedav WebDAV server.

When server.metrics_port is set, Prometheus metrics are served on that
port at /metrics, separate from the WebDAV listener.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port (env: DRIVEDAV_SERVER_PORT or PORT)")
	serveCmd.Flags().Int("metrics-port", 0, "Prometheus metrics port, 0 disables (env: DRIVEDAV_SERVER_METRICS_PORT)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, cleanup, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	slog.Info("opened storage", "type", cfg.Storage.Type)

	authenticator, err := newAuthenticator(cfg)
	if err != nil {
		return err
	}

	var metrics *davhttp.Metrics
	if cfg.Server.MetricsPort > 0 {
		metrics = davhttp.NewMetrics()
	}

	handler := davhttp.NewHandler(&davhttp.HandlerConfig{
		Authenticator: authenticator,
		Realm:         cfg.Auth.Realm,
		PerUserRoot:   cfg.Auth.PerUserRoot,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		CORS:          cfg.CORS,
		Metrics:       metrics,
	}, gateway)

	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}}
	if metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Server.MetricsPort),
			Handler:     mux,
			IdleTimeout: cfg.Server.IdleTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, server := range servers {
		go func() {
			slog.Info("starting server", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", server.Addr, err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down server...")
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	for _, server := range servers {
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "addr", server.Addr, "err", err)
		}
	}

	return serveErr
}

// newAuthenticator returns nil when authentication is disabled.
func newAuthenticator(cfg *config.Config) (drivedav.Authenticator, error) {
	if !cfg.Auth.Enabled {
		slog.Warn("authentication disabled, serving anonymously")
		return nil, nil
	}

	store, err := userbackend.NewCredentialStore(cfg.Auth.Users)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if store.Len() == 0 {
		slog.Warn("authentication enabled but no users configured, every request will be rejected")
	}
	slog.Info("authentication enabled", "users", store.Len(), "per_user_root", cfg.Auth.PerUserRoot)

	return drivedav.NewBasicAuthenticator(store), nil
}
