package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/estatedesk/internal/auth"
	"github.com/stwalsh4118/estatedesk/internal/cache"
	"github.com/stwalsh4118/estatedesk/internal/config"
	"github.com/stwalsh4118/estatedesk/internal/database"
	"github.com/stwalsh4118/estatedesk/internal/handlers"
	"github.com/stwalsh4118/estatedesk/internal/logger"
	"github.com/stwalsh4118/estatedesk/internal/middleware"
	"github.com/stwalsh4118/estatedesk/internal/repository"
	"github.com/stwalsh4118/estatedesk/internal/scheduler"
	"github.com/stwalsh4118/estatedesk/internal/services"
	"github.com/stwalsh4118/estatedesk/internal/storage"
	"github.com/stwalsh4118/estatedesk/migrations"
)

const (
	shutdownTimeout = 30 * time.Second
	callerKeyPrefix = "caller:"
	uploadBurst     = 5
)

func main() {
	// Load configuration from .env and environment variables
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.Server.Env)
	if cfg.Server.LogLevel != "" && !log.SetLevel(cfg.Server.LogLevel) {
		log.Warn("Unknown log level, keeping default", map[string]interface{}{"log_level": cfg.Server.LogLevel})
	}
	log.Info("Starting EstateDesk API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"auth_mode":   cfg.Auth.Mode,
	})

	ctx := context.Background()

	// Create database connection pool
	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", err, map[string]interface{}{
			"host": cfg.Database.Host,
			"port": cfg.Database.Port,
			"name": cfg.Database.Name,
		})
	}
	defer db.Close()

	log.Info("Database connection established", map[string]interface{}{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Name,
		"pool_min": cfg.Database.PoolMin,
		"pool_max": cfg.Database.PoolMax,
	})

	if cfg.Database.AutoMigrate {
		applied, err := db.Migrate(ctx, migrations.FS)
		if err != nil {
			log.Fatal("Failed to apply migrations", err, nil)
		}
		log.Info("Schema up to date", map[string]interface{}{"applied": applied})
	}

	checks := []handlers.DependencyCheck{{Name: "database", Pinger: db}}

	// Caller cache is optional; without it every request hits the database.
	var callerCache services.CallerCache
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, caller cache disabled", map[string]interface{}{
				"addr":  cfg.Redis.Addr,
				"error": err.Error(),
			})
		} else {
			defer redisClient.Close()
			jsonCache := cache.NewJSONCache(redisClient, callerKeyPrefix, cfg.Redis.CallerTTL)
			callerCache = jsonCache
			checks = append(checks, handlers.DependencyCheck{Name: "redis", Pinger: jsonCache, Optional: true})
			log.Info("Caller cache enabled", map[string]interface{}{
				"addr": cfg.Redis.Addr,
				"ttl":  cfg.Redis.CallerTTL.String(),
			})
		}
	}

	// Token verification
	var authenticator auth.Authenticator
	switch cfg.Auth.Mode {
	case config.AuthModeFirebase:
		client, err := auth.InitializeFirebase(ctx, cfg.Auth.FirebaseCredentialsPath)
		if err != nil {
			log.Fatal("Failed to initialize Firebase", err, nil)
		}
		authenticator = auth.NewFirebaseAuthenticator(client)
	default:
		log.Warn("Using header authentication; do not expose this server publicly", nil)
		authenticator = auth.NewHeaderAuthenticator()
	}

	// Object storage is optional; without it source files are ignored.
	var uploader storage.Uploader
	if cfg.Storage.URL != "" {
		uploader = storage.NewClient(cfg.Storage, log)
	}

	// Initialize repository and service layers
	employeeRepo := repository.NewEmployeeRepository(db)
	organizationRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)

	callerResolver := services.NewCallerResolver(employeeRepo, organizationRepo, callerCache, log)
	projectService := services.NewProjectService(projectRepo, uploader, log)
	unitService := services.NewUnitService(projectRepo, unitRepo, log)
	promotionService := services.NewPromotionService(promotionRepo, projectRepo, log)

	// Promotion lifecycle job
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs, err = scheduler.New(promotionService, cfg.Scheduler.PromotionSchedule, log)
		if err != nil {
			log.Fatal("Failed to create scheduler", err, map[string]interface{}{
				"schedule": cfg.Scheduler.PromotionSchedule,
			})
		}
		if _, err := jobs.RunOnce(ctx); err != nil {
			log.Error("Initial promotion lifecycle run failed", err, nil)
		}
		jobs.Start()
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	// Register health check routes
	healthHandler := handlers.NewHealthHandler(cfg.Server.Env, checks...)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	// Register authenticated API v1 routes
	maxUploadBytes := int64(cfg.Ingest.MaxUploadMB) << 20
	uploadLimiter := middleware.NewRateLimiter(cfg.Ingest.RatePerMinute, uploadBurst)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(authenticator))
	v1.Use(handlers.ResolveCaller(callerResolver))
	handlers.RegisterRoutes(v1, handlers.API{
		Projects:   handlers.NewProjectHandler(projectService, maxUploadBytes),
		Units:      handlers.NewUnitHandler(unitService, maxUploadBytes),
		Promotions: handlers.NewPromotionHandler(promotionService),
	}, uploadLimiter.Middleware())

	// Create HTTP server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	// Wait for interrupt signal (SIGINT or SIGTERM)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler did not stop in time", err, nil)
		}
	}

	log.Info("Server exited", nil)
}
