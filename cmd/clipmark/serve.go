// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clipmark/clipmark/internal/article"
	"github.com/clipmark/clipmark/internal/article/metadata"
	articlepg "github.com/clipmark/clipmark/internal/article/postgres"
	"github.com/clipmark/clipmark/internal/auth"
	authpg "github.com/clipmark/clipmark/internal/auth/postgres"
	"github.com/clipmark/clipmark/internal/config"
	"github.com/clipmark/clipmark/internal/httpapi"
	"github.com/clipmark/clipmark/internal/logging"
	"github.com/clipmark/clipmark/internal/observability"
	"github.com/clipmark/clipmark/internal/store"
	"github.com/clipmark/clipmark/pkg/errutil"
)

// shutdownTimeout bounds how long in-flight requests get on SIGTERM.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Clipmark API server",
		Long: `Start the HTTP API server, the metrics/health listener, and the
background session sweeper.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(resolveConfigPath(), cmd.Flags())
			if err != nil {
				return err
			}
			autoMigrate, err := cmd.Flags().GetBool("auto-migrate")
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, autoMigrate)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().Bool("auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, autoMigrate bool) error {
	logging.SetDefault("clipmark", version, cfg.Logging.Format, logging.ParseLevel(cfg.Logging.Level))
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if autoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	authSvc, err := auth.NewService(
		authpg.NewUserRepository(pool),
		authpg.NewSessionRepository(pool),
		auth.NewPBKDF2Hasher(),
		logger,
	)
	if err != nil {
		return err
	}

	clipSvc, err := article.NewService(
		articlepg.NewArticleRepository(pool),
		articlepg.NewTagRepository(pool),
		metadata.NewFetcher(nil),
		logger,
	)
	if err != nil {
		return err
	}

	var (
		metrics *observability.Metrics
		obsErr  <-chan error
	)
	if cfg.Observability.Addr != "" {
		obs := observability.NewServer(cfg.Observability.Addr, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErr, err = obs.Start()
		if err != nil {
			return err
		}
		metrics = obs.Metrics()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := obs.Stop(stopCtx); stopErr != nil {
				errutil.LogError(logger, "observability server shutdown failed", stopErr)
			}
		}()
	}

	var flow *httpapi.GitHubFlow
	if cfg.GitHubEnabled() {
		flow, err = httpapi.NewGitHubFlow(httpapi.GitHubFlowConfig{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			RedirectURL:  cfg.GitHub.RedirectURL,
		})
		if err != nil {
			return err
		}
		logger.Info("github login enabled")
	}

	handler, err := httpapi.NewHandler(httpapi.Options{
		Auth:          authSvc,
		Clips:         clipSvc,
		GitHub:        flow,
		Metrics:       metrics,
		Logger:        logger,
		SecureCookies: cfg.Server.SecureCookies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	go sweepSessions(ctx, authSvc, metrics, cfg.Session.SweepInterval, logger)

	select {
	case err := <-serveErr:
		return oops.Code("SERVER_FAILED").With("addr", cfg.Server.Addr).Wrap(err)
	case err := <-obsErr:
		return oops.Code("SERVER_FAILED").With("addr", cfg.Observability.Addr).Wrap(err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}

// sweepSessions periodically deletes expired sessions until ctx is done.
func sweepSessions(ctx context.Context, svc *auth.Service, metrics *observability.Metrics, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.SweepSessions(ctx)
			if err != nil {
				errutil.LogError(logger, "session sweep failed", err)
				continue
			}
			if metrics != nil && deleted > 0 {
				metrics.SessionsSwept.Add(float64(deleted))
			}
		}
	}
}

// migrateUp applies all pending migrations.
func migrateUp(databaseURL string) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // close failure after a completed run is not actionable
		m.Close()
	}()
	return m.Up()
}
