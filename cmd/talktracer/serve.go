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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/talk-tracer/internal/adapter/handler"
	httpmw "github.com/johnquangdev/talk-tracer/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/talk-tracer/internal/usecase/meeting"
	"github.com/johnquangdev/talk-tracer/internal/usecase/pipeline"
	"github.com/johnquangdev/talk-tracer/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/talk-tracer/pkg/validator"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the pipeline workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("🔧 Initializing dependencies...")
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			// Workers outlive the signal so queued runs can drain during shutdown
			workerCtx, cancelWorkers := context.WithCancel(context.WithoutCancel(ctx))
			defer cancelWorkers()

			pool := pipeline.NewWorkerPool(a.orchestrator, cfg.Pipeline.Workers, cfg.Pipeline.QueueSize, logger)
			pool.OnReport(func(r pipeline.RunReport) {
				if r.Success {
					logger.Info("✅ Meeting processed", zap.String("meeting_id", r.MeetingID), zap.String("run_id", r.RunID))
					return
				}
				logger.Error("❌ Meeting processing failed",
					zap.String("meeting_id", r.MeetingID),
					zap.String("run_id", r.RunID),
					zap.String("failed_stage", r.FailedStage),
					zap.Error(r.Err),
				)
			})
			if err := pool.Start(workerCtx); err != nil {
				return err
			}

			svcOpts := []meeting.Option{
				meeting.WithSearcher(a.index),
				meeting.WithLockProbe(a.locker),
				meeting.WithMediaLinks(a.blobs, time.Hour),
				meeting.WithLogger(logger),
			}
			if a.runs != nil {
				svcOpts = append(svcOpts, meeting.WithRunHistory(a.runs))
			}
			svc := meeting.NewService(a.meetings, a.blobs, pool, svcOpts...)

			e := echo.New()
			e.Validator = pkgvalidator.New()
			e.HideBanner = true

			e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
				Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
			}))
			e.Use(middleware.Recover())
			e.Use(middleware.RequestID())
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: cfg.Server.AllowedOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			}))

			routerOpts := []handler.RouterOption{handler.WithGatherer(a.registry)}
			if cfg.JWT.Enabled {
				logger.Info("🔑 API authentication enabled")
				manager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
				routerOpts = append(routerOpts, handler.WithAuth(httpmw.EchoAuth(manager)))
			}
			handler.NewRouter(cfg, handler.NewMeeting(svc, logger), routerOpts...).Setup(e)

			addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("🚀 Starting server",
					zap.String("addr", addr),
					zap.String("environment", cfg.Server.Environment),
					zap.Int("workers", cfg.Pipeline.Workers),
				)
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-serverErr:
				logger.Error("❌ Server failed", zap.Error(err))
			}

			logger.Info("🛑 Shutting down server...", zap.Int("pending_runs", pool.Pending()))

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				logger.Error("❌ Server forced to shutdown", zap.Error(err))
			}

			drained := make(chan struct{})
			go func() {
				pool.Stop()
				close(drained)
			}()
			select {
			case <-drained:
			case <-shutdownCtx.Done():
				logger.Warn("⚠️ Shutdown timeout reached, cancelling in-flight runs")
				cancelWorkers()
				<-drained
			}

			logger.Info("✅ Server stopped gracefully")
			return nil
		},
	}
}
