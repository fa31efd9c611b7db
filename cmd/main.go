package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"rentledger/internal/analytics"
	"rentledger/internal/caching"
	"rentledger/internal/handlers"
	"rentledger/internal/jobs/background"
	"rentledger/internal/middleware"
	"rentledger/internal/repositories"
	"rentledger/internal/services"
	"rentledger/pkg/database"
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
		log.Fatal("JWT_SECRET environment variable is required")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
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
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// External collaborators
	whatsAppSvc := services.NewWhatsAppService(
		os.Getenv("WHATSAPP_API_TOKEN"),
		os.Getenv("WHATSAPP_PHONE_ID"),
		envOrDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com/v19.0"),
	)
	linkSvc := services.NewPaymentLinkService(
		os.Getenv("PAYLINK_API_KEY"),
		envOrDefault("PAYLINK_BASE_URL", "https://api.paylink.example.com/v1"),
	)

	clock := clockwork.NewRealClock()

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	propertyRepo := repositories.NewPropertyRepo(pool)
	unitRepo := repositories.NewUnitRepo(pool)
	bindingRepo := repositories.NewBindingRepo(pool)
	paymentRepo := repositories.NewRentPaymentRepo(pool)
	auditRepo := repositories.NewAuditLogsRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	bindingSvc := services.NewBindingService(bindingRepo, tenantRepo, unitRepo, auditRepo, cacheSvc)
	billingSvc := services.NewBillingService(bindingRepo, paymentRepo, tenantRepo, unitRepo, propertyRepo, linkSvc, whatsAppSvc, clock)
	arrearsSvc := services.NewArrearsService(paymentRepo, tenantRepo, unitRepo, propertyRepo, whatsAppSvc, clock)
	noticeSvc := services.NewNoticeService(arrearsSvc, minioSvc, clock)
	paymentSvc := services.NewPaymentService(paymentRepo, auditRepo, clock)
	analyticsSvc := analytics.NewAnalyticsService(paymentRepo, cacheSvc, clock)

	// Create handlers
	tenantHandlers := handlers.NewTenantHandlers(tenantRepo)
	propertyHandlers := handlers.NewPropertyHandlers(propertyRepo, unitRepo)
	unitHandlers := handlers.NewUnitHandlers(unitRepo)
	bindingHandlers := handlers.NewBindingHandlers(bindingSvc)
	paymentHandlers := handlers.NewPaymentHandlers(paymentSvc)
	jobHandlers := handlers.NewJobHandlers(billingSvc, arrearsSvc, analyticsSvc)
	noticeHandlers := handlers.NewNoticeHandlers(noticeSvc)

	// Background scheduler
	jobScheduler := background.NewJobScheduler(billingSvc, arrearsSvc, noticeSvc, analyticsSvc)
	if err := jobScheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := jobScheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", func(c echo.Context) error {
		return handlers.ReadinessCheck(c, pool)
	})

	// API routes
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(jwtSecret))

	// Tenant routes
	v1.GET("/tenants", tenantHandlers.ListTenants)
	v1.POST("/tenants", tenantHandlers.CreateTenant)
	v1.GET("/tenants/:id", tenantHandlers.GetTenant)
	v1.PUT("/tenants/:id", tenantHandlers.UpdateTenant)
	v1.DELETE("/tenants/:id", tenantHandlers.DeleteTenant)
	v1.GET("/tenants/:id/binding", bindingHandlers.GetPrimaryBinding)
	v1.GET("/tenants/:id/bindings", bindingHandlers.ListTenantBindings)
	v1.PUT("/tenants/:id/lease", bindingHandlers.UpdateLease)
	v1.GET("/tenants/:id/payments", paymentHandlers.ListTenantPayments)

	// Property and unit routes
	v1.GET("/properties", propertyHandlers.ListProperties)
	v1.POST("/properties", propertyHandlers.CreateProperty)
	v1.GET("/properties/:id", propertyHandlers.GetProperty)
	v1.PUT("/properties/:id", propertyHandlers.UpdateProperty)
	v1.DELETE("/properties/:id", propertyHandlers.DeleteProperty)
	v1.GET("/properties/:id/units", propertyHandlers.ListPropertyUnits)

	v1.GET("/units", unitHandlers.ListUnits)
	v1.POST("/units", unitHandlers.CreateUnit)
	v1.GET("/units/:id", unitHandlers.GetUnit)
	v1.PUT("/units/:id", unitHandlers.UpdateUnit)
	v1.DELETE("/units/:id", unitHandlers.DeleteUnit)

	// Binding routes
	v1.POST("/bindings/primary", bindingHandlers.AssignPrimary)

	// Payment routes
	v1.GET("/payments", paymentHandlers.ListPayments)
	v1.GET("/payments/:id", paymentHandlers.GetPayment)
	v1.POST("/payments/:id/record", paymentHandlers.RecordPayment)

	// Legal notice routes
	v1.GET("/notices/n4", noticeHandlers.ListN4Eligible)
	v1.GET("/notices/l1", noticeHandlers.ListL1Eligible)
	v1.POST("/notices/export", noticeHandlers.ExportReport)

	// Scheduler trigger routes
	v1.POST("/jobs/rent-generation", jobHandlers.TriggerRentGeneration)
	v1.POST("/jobs/arrears-sweep", jobHandlers.TriggerArrearsSweep)
	v1.GET("/analytics/arrears", jobHandlers.GetArrearsSummary)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Rentledger server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Printf("Shutting down")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
