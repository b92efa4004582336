package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"bendahara/internal/config"
	"bendahara/internal/database"
	"bendahara/internal/lock"
	"bendahara/internal/logger"
	"bendahara/internal/middleware"
	"bendahara/internal/revalidate"
	"bendahara/internal/server"
	"bendahara/internal/services"
	"bendahara/internal/validator"
)

// @title           Bendahara API
// @version         1.0
// @description     Bendahara is the financial ledger of a pesantren: tuition (SPP), savings, cash, and committee handover.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()
	ctx := context.Background()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	seeded, err := database.SeedSystemCategories(ctx, db)
	if err != nil {
		return err
	}
	if seeded > 0 {
		log.Infow("seeded system categories", "count", seeded)
	}

	// Locks and revalidation go through redis when it is configured.
	var locker lock.Locker
	var notifier revalidate.Notifier
	if appConfig.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to reach redis at %s: %w", appConfig.RedisAddr, err)
		}

		opts := lock.DefaultOptions()
		opts.Expiry = appConfig.LockExpiry
		locker = lock.NewRedisLocker(rdb, opts)
		notifier = revalidate.NewRedisNotifier(rdb, appConfig.RevalidateChannel)
		log.Infow("using redis for locks and revalidation", "addr", appConfig.RedisAddr)
	} else {
		locker = lock.NewLocalLocker()
		notifier = revalidate.LogNotifier{}
		log.Warn("REDIS_ADDR not set: SPP locks are process-local")
	}

	// Initialize services
	categoryService := services.NewCategoryService(db, notifier)
	svc := server.Services{
		Users:        services.NewUserService(db),
		Audit:        services.NewAuditService(db),
		Categories:   categoryService,
		Ledger:       services.NewLedgerService(db, categoryService),
		Handover:     services.NewHandoverService(db, notifier),
		Transactions: services.NewTransactionService(db, categoryService, services.NewPaymentGuard(db), locker, notifier),
		Installments: services.NewInstallmentService(db),
	}

	validator.Register()
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens := middleware.NewTokenIssuer(appConfig.JWTSecret, appConfig.JWTExpirationDur)
	router := server.NewRouter(svc, tokens, appConfig.Location)

	log.Infof("Starting Bendahara server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
