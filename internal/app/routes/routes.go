package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mesconnect/backend/internal/app/controllers"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	connectionController *controllers.ConnectionController,
	chatController *controllers.ChatController,
	confessionController *controllers.ConfessionController,
	eventController *controllers.EventController,
	groupController *controllers.GroupController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Connection graph routes
	connections := authenticated.Group("/connections")
	{
		connections.GET("", connectionController.ListAccepted)
		connections.GET("/counts", connectionController.Counts)
		connections.GET("/suggestions", connectionController.Suggestions)
		connections.GET("/requests", connectionController.ListPending)
		connections.POST("/requests", connectionController.Request)
		connections.PUT("/requests/:userId", connectionController.Respond)
		connections.GET("/:userId/status", connectionController.StatusWith)
		connections.DELETE("/:userId", connectionController.Remove)
	}

	// Direct messaging routes
	messages := authenticated.Group("/messages")
	{
		messages.GET("", chatController.Conversations)
		messages.POST("", chatController.Send)
		messages.GET("/:userId", chatController.History)
	}

	// Confession routes
	confessions := authenticated.Group("/confessions")
	{
		confessions.GET("", confessionController.Feed)
		confessions.POST("", confessionController.Submit)
		confessions.GET("/mine", confessionController.MyConfessions)
		confessions.POST("/:id/like", confessionController.ToggleLike)
		confessions.DELETE("/:id", confessionController.Delete)

		// Admin-only moderation routes
		moderation := confessions.Group("")
		moderation.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			moderation.GET("/pending", confessionController.Pending)
			moderation.PUT("/:id/moderate", confessionController.Moderate)
		}
	}

	// Event routes
	events := authenticated.Group("/events")
	{
		events.GET("", eventController.Upcoming)
		events.POST("", eventController.Create)
		events.GET("/attending", eventController.Attending)
		events.GET("/organizing", eventController.Organizing)
		events.POST("/:id/register", eventController.Register)
		events.DELETE("/:id/register", eventController.Cancel)
		events.GET("/:id/participants", eventController.Participants)
	}

	// Group routes
	groups := authenticated.Group("/groups")
	{
		groups.GET("", groupController.Discover)
		groups.POST("", groupController.Create)
		groups.GET("/mine", groupController.MyGroups)
		groups.POST("/:id/join", groupController.Join)
		groups.POST("/:id/leave", groupController.Leave)
		groups.PUT("/:id/roles", groupController.SetRole)
		groups.PUT("/:id/ban", groupController.Ban)
		groups.GET("/:id/members", groupController.Members)
	}
}
