package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "github.com/noah-isme/clinic-scheduler-api/api/swagger"
	"github.com/noah-isme/clinic-scheduler-api/internal/handler"
	"github.com/noah-isme/clinic-scheduler-api/internal/matching"
	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	"github.com/noah-isme/clinic-scheduler-api/internal/router"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/cache"
	"github.com/noah-isme/clinic-scheduler-api/pkg/config"
	"github.com/noah-isme/clinic-scheduler-api/pkg/database"
	"github.com/noah-isme/clinic-scheduler-api/pkg/logger"
	"github.com/noah-isme/clinic-scheduler-api/pkg/security"
)

// @title Clinic Scheduler API
// @version 1.0.0
// @description Matches clients with therapy staff and manages the weekly clinic schedule.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Summary.CacheEnabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, summary cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Summary.CacheTTL, logr, cacheRepo != nil)

	cipher := security.NewTextCipher(cfg.Security.NotesEncryptionKey)
	if !cipher.Enabled() {
		logr.Warn("NOTES_ENCRYPTION_KEY not set, notes are stored in plain text")
	}

	clientRepo := repository.NewClientRepository(db, cipher)
	staffRepo := repository.NewStaffRepository(db, cipher)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db, cipher)
	blockRepo := repository.NewBlockRepository(db)
	therapyRepo := repository.NewTherapyAppointmentRepository(db, cipher)
	scheduleRepo := repository.NewScheduleRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	validate := validator.New()

	summarySvc := service.NewSummaryService(clientRepo, staffRepo, availabilityRepo, appointmentRepo, cacheSvc, cfg.Summary.CacheTTL, logr)
	matchingSvc := service.NewMatchingService(
		clientRepo, staffRepo, availabilityRepo, appointmentRepo, blockRepo,
		metricsSvc, validate, logr,
		matching.Options{LanguageLabel: cfg.Scheduler.LanguageLabel},
	)
	clientSvc := service.NewClientService(clientRepo, staffRepo, summarySvc, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, summarySvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, clientRepo, staffRepo, summarySvc, validate, logr)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, clientRepo, staffRepo, matchingSvc, summarySvc, db, validate, logr)
	blockSvc := service.NewBlockService(blockRepo, validate, logr)
	therapySvc := service.NewTherapyAppointmentService(therapyRepo, clientRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, db, cacheSvc, validate, logr)
	auditSvc := service.NewAuditService(auditRepo)
	exportSvc := service.NewExportService(appointmentRepo, clientRepo, staffRepo, logr, nil, nil)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	deps := router.Dependencies{
		Logger:           logr,
		Tokens:           authSvc,
		Observer:         metricsSvc,
		Clients:          handler.NewClientHandler(clientSvc, summarySvc, matchingSvc),
		Staff:            handler.NewStaffHandler(staffSvc, summarySvc),
		Availability:     handler.NewAvailabilityHandler(availabilitySvc),
		Appointments:     handler.NewAppointmentHandler(appointmentSvc, matchingSvc),
		Blocks:           handler.NewBlockHandler(blockSvc),
		Therapy:          handler.NewTherapyAppointmentHandler(therapySvc),
		Schedules:        handler.NewScheduleHandler(scheduleSvc),
		AuditLogs:        handler.NewAuditHandler(auditSvc),
		Exports:          handler.NewExportHandler(exportSvc),
		Metrics:          handler.NewMetricsHandler(metricsSvc, db),
		Audit:            auditRepo,
		ScheduleResolver: scheduleSvc,
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS > 0 {
		deps.RateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:    rate.Limit(cfg.RateLimit.RPS),
			Burst:   cfg.RateLimit.Burst,
			IdleTTL: cfg.RateLimit.IdleTTL,
		})
	}

	engine := router.New(deps, router.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		EnableMetrics:  cfg.Metrics.Enabled,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
