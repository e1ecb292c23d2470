package api

import (
	"net/http"

	"propdesk-backend/internal/auth/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.authHandler.Login)
			auth.POST("/register", h.authHandler.Register)
			auth.POST("/refresh", h.authHandler.Refresh)
			auth.POST("/logout", h.authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(h.authUsecase), h.authHandler.Me)
		}

		// Device token routes (protected)
		devices := api.Group("/devices")
		devices.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			devices.POST("/register", h.authHandler.RegisterDevice)
			devices.POST("/unregister", h.authHandler.UnregisterDevice)
		}

		// Property routes (protected)
		properties := api.Group("/properties")
		properties.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			properties.GET("", h.propertyHandler.List)
			properties.GET("/suggest", h.propertyHandler.Suggest)
			properties.POST("", h.propertyHandler.Create)
			properties.GET("/:id", h.propertyHandler.Get)
			properties.PUT("/:id", h.propertyHandler.Update)
			properties.DELETE("/:id", h.propertyHandler.Delete)

			// PropertyFinder sync
			properties.POST("/:id/sync", h.propertyHandler.Sync)
			properties.POST("/:id/sync/update", h.propertyHandler.UpdateSync)
			properties.POST("/:id/publish", h.propertyHandler.Publish)
			properties.POST("/:id/unpublish", h.propertyHandler.Unpublish)
			properties.POST("/:id/verification", h.propertyHandler.SubmitVerification)
			properties.POST("/:id/refresh", h.propertyHandler.Refresh)
			properties.GET("/:id/similar", h.propertyHandler.Similar)
			properties.POST("/:id/description", h.propertyHandler.GenerateDescription)
		}

		// Bulk portal sync (protected)
		sync := api.Group("/sync")
		sync.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			sync.POST("/export", h.propertyHandler.BulkExport)
			sync.POST("/import", h.propertyHandler.BulkImport)
			sync.DELETE("/locations", h.propertyHandler.WipeLocationCache)
		}

		// Agent routes (protected)
		agents := api.Group("/agents")
		agents.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			agents.GET("", h.agentHandler.List)
			agents.POST("", h.agentHandler.Create)
			agents.GET("/:id", h.agentHandler.Get)
			agents.PUT("/:id", h.agentHandler.Update)
			agents.DELETE("/:id", h.agentHandler.Delete)
		}

		// Developer routes (protected)
		developers := api.Group("/developers")
		developers.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			developers.GET("", h.devHandler.List)
			developers.POST("", h.devHandler.Create)
			developers.GET("/:id", h.devHandler.Get)
			developers.PUT("/:id", h.devHandler.Update)
			developers.DELETE("/:id", h.devHandler.Delete)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			projects.GET("", h.projectHandler.List)
			projects.POST("", h.projectHandler.Create)
			projects.GET("/:id", h.projectHandler.Get)
			projects.PUT("/:id", h.projectHandler.Update)
			projects.DELETE("/:id", h.projectHandler.Delete)
		}

		// Lead routes (protected)
		leads := api.Group("/leads")
		leads.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			leads.GET("", h.leadHandler.List)
			leads.POST("", h.leadHandler.Create)
			leads.POST("/ingest", h.leadHandler.Ingest)
			leads.GET("/:id", h.leadHandler.Get)
			leads.PUT("/:id", h.leadHandler.Update)
			leads.PATCH("/:id/status", h.leadHandler.UpdateStatus)
			leads.DELETE("/:id", h.leadHandler.Delete)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(delivery.AuthMiddleware(h.authUsecase))
		{
			notifications.GET("", h.notifHandler.List)
			notifications.PATCH("/:id/read", h.notifHandler.MarkRead)
			notifications.POST("/read-all", h.notifHandler.MarkAllRead)
		}

		// File upload (protected)
		api.POST("/upload", delivery.AuthMiddleware(h.authUsecase), h.Upload)

		// Settings routes - runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ollama", GetOllamaSettings)
			settings.PUT("/ollama", UpdateOllamaSettings)
			settings.POST("/ollama/test", TestOllamaConnection)
		}
	}
}
