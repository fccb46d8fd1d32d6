package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appbilling "github.com/dmflow/backend/internal/application/billing"
	appidentity "github.com/dmflow/backend/internal/application/identity"
	"github.com/dmflow/backend/internal/infrastructure/auth"
	"github.com/dmflow/backend/internal/infrastructure/cache"
	"github.com/dmflow/backend/internal/infrastructure/config"
	"github.com/dmflow/backend/internal/infrastructure/logger"
	"github.com/dmflow/backend/internal/infrastructure/persistence"
	"github.com/dmflow/backend/internal/interfaces/http/handler"
	"github.com/dmflow/backend/internal/interfaces/http/router"
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
		_ = log.Sync()
	}()

	log.Info("Starting dmflow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Tier cache is best effort; the server runs without Redis
	var tierCache appbilling.TierCache
	redisClient, err := cache.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, tier resolution caching disabled", zap.Error(err))
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
		tierCache = cache.NewTierCache(redisClient, cfg.Redis.TierCacheTTL)
		log.Info("Tier cache connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Repositories
	tierRepo := persistence.NewTierRepository(db.DB)
	userRepo := persistence.NewUserRepository(db.DB)
	accountRepo := persistence.NewBillingAccountRepository(db.DB)
	subRepo := persistence.NewSubscriptionRepository(db.DB)
	workspaceRepo := persistence.NewWorkspaceRepository(db.DB)
	memberRepo := persistence.NewWorkspaceMemberRepository(db.DB)
	counterRepo := persistence.NewUsageCounterRepository(db.DB)

	// Application services
	catalogService := appbilling.NewTierCatalogService(tierRepo, userRepo, tierCache, log)
	resolutionService := appbilling.NewTierResolutionService(userRepo, workspaceRepo, tierRepo, subRepo, tierCache, log)
	quotaService := appbilling.NewQuotaService(resolutionService, counterRepo, workspaceRepo, cfg.Quota.UsageWindowDays, log)
	subscriptionService := appbilling.NewSubscriptionService(subRepo, accountRepo, tierRepo, tierCache, log)
	userService := appidentity.NewUserService(userRepo, tierRepo, resolutionService, log)
	workspaceService := appidentity.NewWorkspaceService(workspaceRepo, memberRepo, userRepo, quotaService, resolutionService, log)

	// Every user must resolve to some tier, so the catalog seeds its
	// built-in tiers before the server accepts traffic
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalogService.SeedDefaults(seedCtx); err != nil {
		cancelSeed()
		log.Fatal("Failed to seed tier catalog", zap.Error(err))
	}
	cancelSeed()

	jwtService := auth.NewJWTService(cfg.JWT)

	engine := router.New(router.Dependencies{
		Auth:       handler.NewAuthHandler(userService, jwtService, log),
		Tiers:      handler.NewTierHandler(catalogService, log),
		Quota:      handler.NewQuotaHandler(quotaService, resolutionService, log),
		Workspaces: handler.NewWorkspaceHandler(workspaceService, log),
		Admin:      handler.NewAdminHandler(userService, subscriptionService, log),
		JWT:        jwtService,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}
