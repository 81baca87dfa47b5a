package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	auditapp "github.com/shopstack/backend/internal/application/audit"
	inventoryapp "github.com/shopstack/backend/internal/application/inventory"
	warehouseapp "github.com/shopstack/backend/internal/application/warehouse"
	"github.com/shopstack/backend/internal/domain/shared"
	"github.com/shopstack/backend/internal/infrastructure/auth"
	"github.com/shopstack/backend/internal/infrastructure/cache"
	"github.com/shopstack/backend/internal/infrastructure/config"
	"github.com/shopstack/backend/internal/infrastructure/logger"
	"github.com/shopstack/backend/internal/infrastructure/notify"
	"github.com/shopstack/backend/internal/infrastructure/persistence"
	"github.com/shopstack/backend/internal/infrastructure/telemetry"
	"github.com/shopstack/backend/internal/interfaces/http/handler"
	"github.com/shopstack/backend/internal/interfaces/http/middleware"
	"github.com/shopstack/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

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

	log.Info("Starting shopstack backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Tracing (no-op unless enabled in config)
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
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
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.DB.Use(otelgorm.NewPlugin()); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Cache; falls back to in-memory when Redis is unreachable
	var store shared.Cache
	if cfg.Cache.Enabled {
		store, err = cache.NewFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
		if err != nil {
			log.Fatal("Failed to initialize cache", zap.Error(err))
		}
	} else {
		log.Info("Caching disabled, reads always hit the database")
		store = cache.NewNopCache()
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Repositories and transaction scope
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	scope := persistence.NewGormScope(db.DB)

	notifier := notify.NewLogNotifier(log)

	// Application services
	inventoryService := inventoryapp.NewService(scope, inventoryRepo, store, notifier, log)
	inventoryService.SetTxTimeout(cfg.Database.TxTimeout)
	inventoryService.SetCacheTTL(cfg.Cache.TTL)

	warehouseService := warehouseapp.NewService(scope, warehouseRepo, store, notifier, log)
	warehouseService.SetTxTimeout(cfg.Database.TxTimeout)
	warehouseService.SetCacheTTL(cfg.Cache.TTL)
	warehouseService.SetDeleteGuard(warehouseapp.DeleteGuardPolicy(cfg.Inventory.DeleteGuard))

	auditService := auditapp.NewService(auditRepo)

	jwtService := auth.NewJWTService(cfg.JWT)

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	middleware.SetupValidator()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))

	// System routes sit outside the authenticated API group
	handler.NewSystemHandler(db, version).RegisterRoutes(engine)

	router.NewRouter(engine, router.WithMiddleware(middleware.JWTAuth(jwtService))).
		Register(handler.NewInventoryHandler(inventoryService, cfg.Inventory.LowStockThreshold)).
		Register(handler.NewWarehouseHandler(warehouseService)).
		Register(handler.NewAuditHandler(auditService)).
		Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
