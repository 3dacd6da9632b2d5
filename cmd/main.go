// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/auth"
	"github.com/Shivanand-hulikatti/retreat-status/internal/clock"
	"github.com/Shivanand-hulikatti/retreat-status/internal/config"
	"github.com/Shivanand-hulikatti/retreat-status/internal/database"
	"github.com/Shivanand-hulikatti/retreat-status/internal/handler"
	"github.com/Shivanand-hulikatti/retreat-status/internal/logger"
	"github.com/Shivanand-hulikatti/retreat-status/internal/repository"
	"github.com/Shivanand-hulikatti/retreat-status/internal/service"
	"github.com/Shivanand-hulikatti/retreat-status/internal/upstream"
	"github.com/Shivanand-hulikatti/retreat-status/internal/watcher"
)

func main() {
	if err := run(); err != nil {
		slog.Error("retreatd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load(getEnv("RETREATD_CONFIG", "config.yaml"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.New(os.Stdout, level, cfg.Log.Format == "json")
	slog.SetDefault(log)

	// ── 2. Retreat source ────────────────────────────────────────────────
	client := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout,
		upstream.WithToken(cfg.Upstream.Token),
		upstream.WithLogger(logger.WithComponent(log, "upstream")),
	)

	var source service.Source = client
	if cfg.Source == config.SourcePostgres {
		pool, err := database.NewPool(ctx, database.Config{
			URL:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		}, logger.WithComponent(log, "database"))
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		source = repository.NewRetreatRepository(pool)
	}
	log.Info("retreat source ready", "source", cfg.Source)

	// ── 3. Wire up layers ────────────────────────────────────────────────
	clk := clock.NewSystem()
	svc := service.NewRetreatService(source, clk,
		service.WithLeadSink(client),
		service.WithLogger(logger.WithComponent(log, "service")),
	)
	retreatHandler := handler.NewRetreatHandler(svc, logger.WithComponent(log, "handler"),
		handler.WithCountdownInterval(cfg.Server.CountdownInterval),
		handler.WithAllowedOrigins(cfg.Server.CORSOrigins),
	)

	var verifier *auth.Verifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewVerifier(cfg.Auth.JWTSecret)
	} else {
		log.Warn("JWT_SECRET not set, admin routes disabled")
	}
	router := handler.NewRouter(retreatHandler, verifier, cfg.Server.CORSOrigins, logger.WithComponent(log, "http"))

	// ── 4. Background watcher ─────────────────────────────────────────────
	if cfg.Watcher.Enabled {
		w := watcher.New(source, clk, logger.WithComponent(log, "watcher"))
		if err := w.Start(ctx, cfg.Watcher.Schedule); err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		defer w.Stop()
	}

	// ── 5. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// Hijacked countdown streams end with ctx; Shutdown does not track them.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
