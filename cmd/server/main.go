package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nearbuy/nearbuy-backend/config"
	"github.com/nearbuy/nearbuy-backend/internal/app/controller"
	"github.com/nearbuy/nearbuy-backend/internal/app/repository"
	"github.com/nearbuy/nearbuy-backend/internal/app/service"
	"github.com/nearbuy/nearbuy-backend/internal/db"
	"github.com/nearbuy/nearbuy-backend/internal/middleware"
	"github.com/nearbuy/nearbuy-backend/internal/router"
	"github.com/nearbuy/nearbuy-backend/internal/scheduler"
	"github.com/nearbuy/nearbuy-backend/internal/storage"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"github.com/nearbuy/nearbuy-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting NEARBUY Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations; this also seeds one enabled gate per known region
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis for region gate caching (optional)
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, falling back to in-process gate cache", map[string]interface{}{
				"error": err.Error(),
			})
			cfg.Redis.Enabled = false
		} else {
			defer func() {
				if err := redis.Close(); err != nil {
					logger.Error("Failed to close Redis connection", err)
				}
			}()
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	merchantRepo := repository.NewMerchantRepository(db.GetDB())
	dealRepo := repository.NewDealRepository(db.GetDB())
	claimRepo := repository.NewClaimRepository(db.GetDB())
	savedDealRepo := repository.NewSavedDealRepository(db.GetDB())
	regionGateRepo := repository.NewRegionGateRepository(db.GetDB())
	auditRepo := repository.NewAuditRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	merchantService := service.NewMerchantService(merchantRepo)
	dealService := service.NewDealService(dealRepo, merchantRepo)
	claimService := service.NewClaimService(dealRepo, claimRepo, db.GetDB())
	regionGateService := service.NewRegionGateService(
		regionGateRepo,
		cfg.Scheduler.RegionGateCacheTTL,
		cfg.Redis.Enabled,
	)
	discoveryService := service.NewDiscoveryService(dealRepo, regionGateService)
	recurrenceService := service.NewRecurrenceService(dealRepo)
	savedDealService := service.NewSavedDealService(savedDealRepo, dealRepo)
	auditService := service.NewAuditService(auditRepo)
	reportService := service.NewReportService(claimRepo, merchantRepo)

	// Start the recurrence scheduler
	recurrenceScheduler := scheduler.NewRecurrenceScheduler(recurrenceService, cfg.Scheduler.RecurrenceCron)
	if err := recurrenceScheduler.Start(); err != nil {
		logger.Fatal("Failed to start recurrence scheduler", err)
	}
	defer recurrenceScheduler.Stop()

	// Initialize storage
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService, auditService)
	merchantController := controller.NewMerchantController(merchantService, dealService, reportService, auditService)
	dealController := controller.NewDealController(
		dealService,
		discoveryService,
		claimService,
		recurrenceService,
		auditService,
	)
	savedDealController := controller.NewSavedDealController(savedDealService, auditService)
	regionGateController := controller.NewRegionGateController(regionGateService, auditService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		merchantController,
		dealController,
		savedDealController,
		regionGateController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
