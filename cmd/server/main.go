package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sellerdesk/backend/internal/application/backoffice"
	appsync "github.com/sellerdesk/backend/internal/application/sync"
	"github.com/sellerdesk/backend/internal/infrastructure/config"
	"github.com/sellerdesk/backend/internal/infrastructure/logger"
	"github.com/sellerdesk/backend/internal/infrastructure/marketplace"
	"github.com/sellerdesk/backend/internal/infrastructure/persistence"
	"github.com/sellerdesk/backend/internal/infrastructure/scheduler"
	"github.com/sellerdesk/backend/internal/infrastructure/synclock"
	"github.com/sellerdesk/backend/internal/interfaces/http/handler"
	"github.com/sellerdesk/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting sellerdesk backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		_ = redisClient.Close()
	}()
	log.Info("Redis connected")

	// Platform client
	platformClient, err := marketplace.NewHTTPClient(&marketplace.ClientConfig{
		BaseURL:        cfg.Marketplace.BaseURL,
		TimeoutSeconds: cfg.Marketplace.TimeoutSeconds,
		MaxRetries:     cfg.Marketplace.MaxRetries,
		RetryBaseDelay: cfg.Marketplace.RetryBaseDelay,
	}, log)
	if err != nil {
		log.Fatal("Failed to create platform client", zap.Error(err))
	}

	// Sync engine
	store := persistence.NewGormStore(db.DB)
	registry := appsync.NewTaskRegistry(log)
	locker := synclock.NewRedisLocker(redisClient, cfg.Sync.LockTTL, log)
	fetchCfg := appsync.FetchConfig{
		BatchSize:           cfg.Sync.BatchSize,
		IncrementalLookback: time.Duration(cfg.Sync.IncrementalLookbackDays) * 24 * time.Hour,
		FullLookback:        time.Duration(cfg.Sync.FullLookbackDays) * 24 * time.Hour,
	}
	orchestrator := appsync.NewOrchestrator(store, platformClient, registry, locker, fetchCfg, log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	registry.StartSweeper(rootCtx, cfg.Sync.SweepInterval, cfg.Sync.TaskRetention, cfg.Sync.TaskStallAge)

	// Periodic incremental syncs
	if cfg.Sync.SchedulerEnabled {
		syncScheduler, err := scheduler.NewSyncScheduler(scheduler.Config{
			Enabled:  true,
			Interval: cfg.Sync.SchedulerInterval,
		}, orchestrator, store.Shops(), log)
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(rootCtx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer syncScheduler.Stop()
	}

	// HTTP interface
	backofficeService := backoffice.NewService(store, log)
	engine := router.New(log, router.Handlers{
		Health:  handler.NewHealthHandler(db),
		Shops:   handler.NewShopHandler(backofficeService),
		Sync:    handler.NewSyncHandler(orchestrator),
		Product: handler.NewProductHandler(backofficeService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	rootCancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
