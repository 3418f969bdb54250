package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"edumart/internal/caching"
	"edumart/internal/handlers"
	"edumart/internal/jobs/background"
	"edumart/internal/middleware"
	"edumart/internal/reports"
	"edumart/internal/repositories"
	"edumart/internal/services"
	"edumart/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// Create repositories
	userRepo := repositories.NewUserRepository(pool)
	planRepo := repositories.NewPlanRepository(pool)
	changeRequestRepo := repositories.NewChangeRequestRepository(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	planSvc := services.NewPlanService(planRepo, cacheSvc)
	subscriptionSvc := services.NewSubscriptionService(userRepo, planRepo, cacheSvc)
	entitlementSvc := services.NewEntitlementService(subscriptionSvc)
	usageSvc := services.NewUsageService(userRepo, subscriptionSvc)
	changeRequestSvc := services.NewChangeRequestService(changeRequestRepo, userRepo, planRepo, subscriptionSvc)
	statsSvc := services.NewStatsService(userRepo, subscriptionSvc)

	reportSvc, err := reports.NewReportService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL, statsSvc)
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}

	// Create handlers
	planHandlers := handlers.NewPlanHandlers(planSvc)
	subscriptionHandlers := handlers.NewSubscriptionHandlers(subscriptionSvc)
	entitlementHandlers := handlers.NewEntitlementHandlers(entitlementSvc, usageSvc, cacheSvc)
	changeRequestHandlers := handlers.NewChangeRequestHandlers(changeRequestSvc)
	statsHandlers := handlers.NewStatsHandlers(statsSvc, reportSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc)

	// Background sweeps
	scheduler := background.NewJobScheduler(userRepo, reportSvc)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Plan catalog (public)
	v1.GET("/plans", planHandlers.ListPlans)
	v1.GET("/plans/:id", planHandlers.GetPlan)

	// Listing visibility serves anonymous visitors too
	v1.GET("/entitlements/visibility", entitlementHandlers.CheckVisibility,
		middleware.OptionalJWTMiddleware(jwtSecret))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))

	protected.GET("/subscriptions/me", subscriptionHandlers.GetOwnSubscription)
	protected.POST("/subscriptions/me/continue", subscriptionHandlers.ContinueOwnSubscription)

	protected.GET("/entitlements/browse", entitlementHandlers.CheckBrowse)
	protected.GET("/entitlements/listings", entitlementHandlers.CheckListing)
	protected.GET("/entitlements/job-posts", entitlementHandlers.CheckJobPost)
	protected.GET("/entitlements/notifications", entitlementHandlers.CheckNotifications)
	protected.POST("/entitlements/usage/:counter/increment", entitlementHandlers.IncrementUsage)
	protected.POST("/entitlements/usage/:counter/decrement", entitlementHandlers.DecrementUsage)

	protected.POST("/change-requests", changeRequestHandlers.CreateChangeRequest)
	protected.GET("/change-requests/me", changeRequestHandlers.ListOwnChangeRequests)

	protected.GET("/stats/usage/me", statsHandlers.GetOwnUsageStats)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.JWTMiddleware(jwtSecret))
	admin.Use(middleware.RequireAdmin())

	admin.POST("/plans", planHandlers.CreatePlan)
	admin.PUT("/plans/:id", planHandlers.UpdatePlan)
	admin.PUT("/plans/:id/toggle", planHandlers.TogglePlanActive)

	admin.POST("/users/:id/subscription", subscriptionHandlers.AssignSubscription)
	admin.PUT("/users/:id/subscription/extend", subscriptionHandlers.ExtendSubscription)
	admin.PUT("/users/:id/subscription/plan", subscriptionHandlers.ChangeSubscriptionPlan)
	admin.PUT("/users/:id/subscription/suspend", subscriptionHandlers.SuspendSubscription)
	admin.PUT("/users/:id/subscription/reactivate", subscriptionHandlers.ReactivateSubscription)
	admin.DELETE("/users/:id/subscription", subscriptionHandlers.CancelSubscription)
	admin.POST("/users/:id/subscription/reset-browse", subscriptionHandlers.ResetBrowseCount)

	admin.GET("/change-requests", changeRequestHandlers.ListChangeRequests)
	admin.GET("/change-requests/:id", changeRequestHandlers.GetChangeRequest)
	admin.PUT("/change-requests/:id/approve", changeRequestHandlers.ApproveChangeRequest)
	admin.PUT("/change-requests/:id/reject", changeRequestHandlers.RejectChangeRequest)

	admin.GET("/stats/usage/:id", statsHandlers.GetUserUsageStats)
	admin.GET("/stats/subscriptions", statsHandlers.GetGlobalStats)
	admin.GET("/stats/plans", statsHandlers.GetPlanStats)
	admin.POST("/reports/usage", statsHandlers.GenerateUsageReport)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("Edumart subscription service v%s starting on port %d", version, port)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
