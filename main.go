// File: /main.go
package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"tripcrew-api/config"
	"tripcrew-api/database"
	"tripcrew-api/jobs"
	"tripcrew-api/middleware"
	"tripcrew-api/realtime"
	"tripcrew-api/routes"
	"tripcrew-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Email service (verification and password reset codes)
	emailService := services.NewEmailService(cfg)

	// Avatar storage; the API stays up without it, avatar uploads degrade
	// to keeping the previous avatar
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		log.Printf("Warning: storage unavailable, avatar uploads disabled: %v", err)
		storageService = nil
	}

	// Live chat subscription broker
	hub := realtime.NewHub()

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Request logging, security headers and panic recovery
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(router, db, cfg, emailService, storageService, hub)

	// Prune old read notifications once a day
	cleanupJob := jobs.NewNotificationCleanupJob(db, 24*time.Hour)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	// Start server
	log.Printf("Starting TripCrew API server on port %s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
