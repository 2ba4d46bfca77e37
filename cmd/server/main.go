package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/donolu/enterprise-grc-system-sub000/internal/config"
	"github.com/donolu/enterprise-grc-system-sub000/internal/handler"
	"github.com/donolu/enterprise-grc-system-sub000/internal/handler/middleware"
	"github.com/donolu/enterprise-grc-system-sub000/internal/repository/postgres"
	"github.com/donolu/enterprise-grc-system-sub000/internal/scopedb"
	"github.com/donolu/enterprise-grc-system-sub000/internal/service"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/logger"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/notify"
	"github.com/donolu/enterprise-grc-system-sub000/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logFormat = "console"
	}
	zapLogger, err := logger.New(os.Getenv("LOG_LEVEL"), logFormat, "grc-platform")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db, err := initDB(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Error("error closing database connection", zap.Error(err))
		}
	}()
	zapLogger.Info("database connection established")

	redisClient, err := initRedis(cfg)
	if err != nil {
		zapLogger.Fatal("failed to initialize Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Error("error closing Redis connection", zap.Error(err))
		}
	}()
	zapLogger.Info("redis connection established")

	validate := validator.NewValidator()

	// Repositories
	tenantRepo := postgres.NewTenantRepository(db)
	domainRepo := postgres.NewDomainRepository(db)
	schemaManager := postgres.NewSchemaManager(db)

	// Optional ops mailer for migration failure reports
	var notifier service.ReportNotifier
	if cfg.Email.Enabled {
		n, err := notify.NewResendNotifier(&notify.Config{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
			OpsEmail:  cfg.Email.OpsEmail,
		})
		if err != nil {
			zapLogger.Warn("migration report mailer disabled", zap.Error(err))
		} else {
			notifier = n
			zapLogger.Info("migration report mailer initialized", zap.String("ops", cfg.Email.OpsEmail))
		}
	}

	// Services
	domainCache := service.NewDomainCache(redisClient, cfg.Resolver.CacheTTL)
	registryService := service.NewRegistryService(tenantRepo, domainRepo, domainCache, zapLogger)
	provisionerService := service.NewProvisionerService(tenantRepo, schemaManager, zapLogger)
	migratorService := service.NewMigratorService(tenantRepo, schemaManager, notifier, zapLogger)
	resolverService := service.NewResolverService(domainRepo, domainCache, zapLogger)
	scoped := scopedb.New(db, zapLogger)

	// Shared schema must be current before serving traffic; tenant schemas
	// are handled by the explicit orchestrator runs.
	if _, err := migratorService.RunPending(context.Background()); err != nil {
		zapLogger.Fatal("shared store migration failed", zap.Error(err))
	}

	// Handlers
	tenantHandler := handler.NewTenantHandler(registryService, provisionerService, validate)
	migrationHandler := handler.NewMigrationHandler(migratorService)
	workspaceHandler := handler.NewWorkspaceHandler(scoped)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	app := fiber.New(fiber.Config{
		AppName:      "GRC Platform v1.0",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	})

	app.Use(middleware.Recovery(zapLogger))
	app.Use(middleware.Logger(zapLogger))
	app.Use(middleware.CORS())

	handler.SetupRoutes(
		app,
		tenantHandler,
		migrationHandler,
		workspaceHandler,
		healthHandler,
		middleware.TenantResolver(resolverService),
		middleware.AdminAuth(cfg.Admin.JWTSecret, cfg.Admin.Issuer),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		zapLogger.Info("server starting",
			zap.String("addr", addr),
			zap.String("environment", cfg.Server.Environment),
		)
		if err := app.Listen(addr); err != nil {
			zapLogger.Error("server failed to start", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}

// initDB initializes the PostgreSQL connection with retry logic
func initDB(cfg *config.Config, zapLogger *zap.Logger) (*sqlx.DB, error) {
	dsn := cfg.Database.DSN()

	var db *sqlx.DB
	var err error

	maxRetries := 5
	retryInterval := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			break
		}

		zapLogger.Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Error(err),
		)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			zapLogger.Error("error closing database after ping failure", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// initRedis initializes the Redis client and verifies the connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping Redis (and close failed: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
