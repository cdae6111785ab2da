// File: /routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"tripcrew-api/config"
	"tripcrew-api/controllers"
	"tripcrew-api/middleware"
	"tripcrew-api/realtime"
	"tripcrew-api/services"
)

// SetupCORS returns the CORS middleware used by the mobile client.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService, storageService *services.StorageService, hub *realtime.Hub) {
	// Services
	tripService := services.NewTripService(db)
	participantService := services.NewParticipantService(db)
	notificationService := services.NewNotificationService(db)
	chatService := services.NewChatService(db, hub)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db, storageService)
	tripController := controllers.NewTripController(db, tripService, participantService, notificationService)
	chatController := controllers.NewChatController(chatService)
	notificationController := controllers.NewNotificationController(notificationService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public, rate limited)
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimit(30, 10))
	{
		auth.POST("/login", authController.Login)
		auth.POST("/register", authController.Register)
		auth.POST("/logout", authController.Logout)
		auth.POST("/verify-code", authController.VerifyCode)
		auth.POST("/resend-verification", authController.ResendVerificationCode)
		auth.POST("/reset-password", authController.ResetPassword)
		auth.POST("/confirm-reset", authController.ConfirmPasswordReset)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		protected.GET("/auth/session", authController.Session)

		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.POST("/profile/avatar", userController.UploadAvatar)
			users.GET("/:id/summary", userController.GetUserSummary)
		}

		// Trip routes
		trips := protected.Group("/trips")
		{
			trips.GET("/", tripController.GetTrips)
			trips.POST("/", tripController.CreateTrip)
			trips.GET("/joined", tripController.GetJoinedTrips)
			trips.GET("/created", tripController.GetCreatedTrips)
			trips.GET("/:id", tripController.GetTrip)
			trips.POST("/:id/join", tripController.JoinTrip)
			trips.POST("/:id/participants/:userId/approve", tripController.ApproveParticipant)
			trips.GET("/:id/participants", tripController.GetParticipants)
			trips.POST("/:id/waypoints", tripController.AddWaypoint)
			trips.DELETE("/:id/waypoints/:waypointId", tripController.RemoveWaypoint)

			// Chat routes, scoped per trip
			trips.GET("/:id/chat", chatController.GetRoom)
			trips.POST("/:id/chat/messages", chatController.SendMessage)
			trips.GET("/:id/chat/ws", chatController.ServeWebsocket)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.GET("/stats", notificationController.GetStats)
			notifications.PUT("/:id/read", notificationController.MarkRead)
			notifications.PUT("/read-all", notificationController.MarkAllRead)
		}
	}
}
