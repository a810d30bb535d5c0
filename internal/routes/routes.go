package routes

import (
	"clinic-backoffice-api/internal/handlers"
	"clinic-backoffice-api/internal/middleware"
	"clinic-backoffice-api/internal/router"

	"github.com/gin-gonic/gin"
)

// SetupRoutes builds the gin engine. The waiting-room router is constructed
// by the caller and passed in explicitly.
func SetupRoutes(rt *router.Router, allowedOrigin string) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Clinic back-office API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		// Login endpoint
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	appointments := handlers.NewAppointmentAPI()
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Appointment directory endpoints
		protectedRoutes.GET("/appointments", appointments.List)
		protectedRoutes.POST("/appointments", appointments.Create)
		protectedRoutes.PUT("/appointments/:id", appointments.Update)
		protectedRoutes.DELETE("/appointments/:id", appointments.Delete)
		// Waiting room snapshot for non-socket dashboards
		protectedRoutes.GET("/waitingroom", handlers.WaitingRoomSnapshot(rt.Store()))
		// Waiting room socket
		protectedRoutes.GET("/ws", handlers.WebSocket(rt))
		// Employees endpoint
		protectedRoutes.GET("/employees", handlers.GetAllEmployees)
	}

	return ginRouter
}
