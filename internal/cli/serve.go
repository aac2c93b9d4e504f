package cli

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
	"go.uber.org/zap"

	"github.com/video-stream/subreview/internal/api"
	"github.com/video-stream/subreview/internal/auth"
	"github.com/video-stream/subreview/internal/config"
	"github.com/video-stream/subreview/internal/db"
	"github.com/video-stream/subreview/internal/logging"
	"github.com/video-stream/subreview/internal/review"
	"github.com/video-stream/subreview/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the review web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.logLevel != "" {
				cfg.LogLevel = opts.logLevel
			}
			if opts.logFormat != "" {
				cfg.LogFormat = opts.logFormat
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("admin user ensured", zap.String("user", cfg.AdminUsername))
	if cfg.GeneratedSecret {
		log.Warn("JWT_SECRET not set, generated a random secret; tokens will not survive a restart")
	}

	files, err := storage.New(cfg.UploadPath)
	if err != nil {
		return err
	}
	sessions := review.NewStore()
	idle, err := cfg.SessionIdle()
	if err != nil {
		return err
	}
	go sweepSessions(ctx, sessions, files, idle, log)

	router := api.NewRouter(ctx, api.Deps{
		Users:    database,
		JWT:      auth.NewJWTService(cfg.JWTSecret),
		Sessions: sessions,
		Files:    files,
		Config:   cfg,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("uploads", cfg.UploadPath),
			zap.Duration("session_ttl", idle),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// sweepSessions drops idle review sessions and their uploads.
func sweepSessions(ctx context.Context, sessions *review.Store, files *storage.Store, idle time.Duration, log *zap.Logger) {
	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, sess := range sessions.Sweep(idle) {
				if err := files.RemoveSession(sess.ID()); err != nil {
					log.Warn("remove expired session files", zap.String("session", sess.ID()), zap.Error(err))
					continue
				}
				log.Info("review session expired", zap.String("session", sess.ID()))
			}
		}
	}
}
