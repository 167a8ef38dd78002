package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/richxcame/lead-forensics/internal/bootstrap"
	"github.com/richxcame/lead-forensics/internal/domains"
	"github.com/richxcame/lead-forensics/internal/leads"
	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/internal/vendorhistory"
	"github.com/richxcame/lead-forensics/pkg/config"
	"github.com/richxcame/lead-forensics/pkg/health"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"go.uber.org/zap"
)

const (
	serviceName    = "forensics-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Server.Environment,
			Release:     serviceName + "@" + serviceVersion,
		}); err != nil {
			logger.Warn("Sentry disabled", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]health.Check{}

	var repo leads.Repository
	var history vendorhistory.HistoryService
	var historyCache vendorhistory.Cache

	redisClient, err := bootstrap.OpenRedis(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache and domain registry", zap.Error(err))
	}
	var registry *domains.Registry
	if redisClient != nil {
		defer redisClient.Close()
		registry = domains.NewRegistry(redisClient)
		historyCache = redisClient
		checks["redis"] = health.RedisChecker(redisClient.Client)
	}

	db, err := bootstrap.OpenDatabase(&cfg.Database)
	if err != nil {
		logger.Warn("Database unavailable, serving scoring only", zap.Error(err))
	} else {
		defer db.Close()
		repo = leads.NewRepository(db.DB)
		history = vendorhistory.NewService(vendorhistory.NewRepository(db.DB), historyCache)
		checks["database"] = health.DatabaseChecker(db.DB)
	}

	rules, err := bootstrap.LoadRules(ctx, cfg.Scoring.RulesFile, registry)
	if err != nil {
		logger.Fatal("Failed to load scoring rules", zap.Error(err))
	}

	archiver, err := bootstrap.NewArchiver(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to initialize report storage", zap.Error(err))
	}

	publisher, err := bootstrap.NewPublisher(cfg.NATS, serviceName)
	if err != nil {
		logger.Warn("Event publishing disabled", zap.Error(err))
	}
	if publisher != nil {
		defer publisher.Close()
	}

	batches := leads.NewService(scoring.NewScorer(rules), repo, publisher, archiver, leads.Options{
		Workers: cfg.Scoring.Workers,
		Subject: cfg.NATS.Subject,
		Source:  serviceName,
	})

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(routerDeps{
		serviceName: serviceName,
		version:     serviceVersion,
		jwtSecret:   cfg.JWT.Secret,
		corsOrigins: cfg.Server.CORSOrigins,
		batches:     batches,
		history:     history,
		registry:    registry,
		checks:      checks,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Lead forensics API starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server stopped")
}
