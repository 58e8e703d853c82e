package main

import (
	"context"
	"errors"
	"fmt"
	"hr-comparator/internal/agent"
	"hr-comparator/internal/api/router"
	"hr-comparator/internal/auth"
	"hr-comparator/internal/config"
	"hr-comparator/internal/coordinator"
	"hr-comparator/internal/core/ports"
	"hr-comparator/internal/core/postgres/repository"
	"hr-comparator/internal/infrastructure/redis"
	"hr-comparator/internal/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

var (
	servePort   int
	skipMigrate bool
	releaseMode bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on startup")
	serveCmd.Flags().BoolVar(&releaseMode, "release", true, "run gin in release mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if releaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Set up database connection
	db, err := repository.Open(cfg.Database.DSN, log)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if !skipMigrate {
		if err := repository.Migrate(db); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// 2. Event bus: redis when configured, otherwise events are dropped
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events ports.EventBus = redis.NopEventBus{}
	if cfg.Redis.Addr != "" {
		client, err := redis.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer client.Close()
		events = redis.NewRedisEventBus(client)

		monitor := coordinator.NewMonitor(events, log)
		go func() {
			if err := monitor.Run(ctx); err != nil {
				log.Error("workflow monitor stopped", zap.Error(err))
			}
		}()
	}

	// 3. Initialize repositories
	resumes := repository.NewResumeRepository(db)
	jds := repository.NewJobDescriptionRepository(db)
	results := repository.NewResultRepository(db)
	files := repository.NewFileRepository(db)
	users := repository.NewUserRepository(db)
	workflows := repository.NewWorkflowRepository(db)

	// 4. Initialize services with repositories
	matcher := agent.New(cfg.Agent, log)
	audit := service.NewAuditService(repository.NewAuditRepository(db), log)
	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpireMinutes)*time.Minute)

	services := router.Services{
		Auth:      service.NewAuthService(users, tokens, auth.NewPasswordHasher(cfg.Auth.BcryptCost), audit, cfg.Auth.MinPasswordLength, log),
		Resumes:   service.NewResumeService(resumes, results, files, audit, cfg.Matching.MaxStoredResumes, log),
		JDs:       service.NewJobDescriptionService(jds, audit, log),
		Matching:  service.NewMatchingService(resumes, jds, results, matcher, audit, log),
		Files:     service.NewFileService(resumes, jds, files, audit, cfg.Files, cfg.Matching, log),
		Analytics: service.NewAnalyticsService(resumes, jds, results),
		Audit:     audit,
		Workflows: service.NewWorkflowService(service.WorkflowDeps{
			Workflows: workflows,
			JDs:       jds,
			Resumes:   resumes,
			Results:   results,
			Agent:     matcher,
			Events:    events,
			Audit:     audit,
			Config:    cfg.Matching,
			Log:       log,
		}),
	}

	// 5. Set up routes
	engine := router.New(router.Options{
		Services:       services,
		Events:         events,
		DB:             sqlDB,
		CORSOrigins:    cfg.Server.CORSOrigins,
		MaxUploadBytes: cfg.Files.MaxFileSizeBytes(),
		Log:            log,
	})

	// 6. Start server. Batch requests block for up to the agent timeout.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      writeTimeout(cfg.Agent),
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("agent_enabled", cfg.Agent.Enabled),
			zap.Bool("event_bus", cfg.Redis.Addr != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// writeTimeout keeps the write deadline above the agent timeout.
func writeTimeout(cfg config.AgentConfig) time.Duration {
	return cfg.Timeout() + time.Minute
}
