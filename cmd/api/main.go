package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"treasury/internal/config"
	"treasury/internal/database"
	"treasury/internal/handlers"
	"treasury/internal/logger"
	"treasury/internal/market"
	"treasury/internal/middleware"
	"treasury/internal/provider"
	"treasury/internal/services"
	"treasury/internal/validator"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "treasury/internal/docs" // Import swagger docs
)

// @title           Treasury API
// @version         1.0
// @description     Treasury is a personal net-worth dashboard backend: it tracks cash and asset holdings across currencies, refreshes prices from an external market data provider, and records valuation history.

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

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Process-lifetime market state: default rates until the first refresh
	store := market.NewStore()

	// Market data provider client; the timeout rides on the http.Client
	httpClient := &http.Client{Timeout: appConfig.RequestTimeout}
	quotes := provider.NewClient(appConfig.MarketDataURL, appConfig.MarketDataAPIKey, httpClient)

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	holdingService := services.NewHoldingService(db)
	historyService := services.NewHistoryService(db)
	refreshService := services.NewRefreshService(db, store, quotes, historyService, userService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	holdingHandler := handlers.NewHoldingHandler(holdingService, refreshService)
	historyHandler := handlers.NewHistoryHandler(historyService)
	refreshHandler := handlers.NewRefreshHandler(refreshService)
	dashboardHandler := handlers.NewDashboardHandler(holdingService, userService, store)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Pipeline routes (scheduler-driven, API-key guarded)
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(appConfig.PipelineAPIKey))
	pipeline.POST("/refresh", refreshHandler.RefreshAll)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Holding routes
	holdings := protected.Group("/holdings")
	holdings.GET("", holdingHandler.ListHoldings)
	holdings.POST("", holdingHandler.AddHolding)
	holdings.DELETE("/:id", holdingHandler.DeleteHolding)
	holdings.PUT("/:id/quantity", holdingHandler.UpdateQuantity)
	holdings.POST("/:id/move", holdingHandler.MoveToPortfolio)

	// Dashboard, refresh, history
	protected.GET("/dashboard", dashboardHandler.GetDashboard)
	protected.POST("/refresh", refreshHandler.Refresh)
	protected.GET("/history", historyHandler.GetHistory)
	protected.GET("/history/chart", historyHandler.GetChart)

	// Optional in-process scheduled refresh
	if appConfig.RefreshSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(appConfig.RefreshSchedule, func() {
			result, err := refreshService.RefreshAll(context.Background())
			if err != nil {
				log.Errorw("scheduled refresh failed", "error", err.Error())
				return
			}
			log.Infow("scheduled refresh completed",
				"users", result.Users,
				"succeeded", result.Succeeded,
				"failed", result.Failed,
				"skipped", result.Skipped,
			)
		})
		if err != nil {
			return fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Infof("Scheduled refresh enabled: %s", appConfig.RefreshSchedule)
	}

	log.Infof("Starting Treasury backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
