package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	channelDelivery "healthpulse-backend/internal/channel/delivery"
	customerDelivery "healthpulse-backend/internal/customer/delivery"
	healthDelivery "healthpulse-backend/internal/health/delivery"
)

func SetupRoutes(
	r *gin.Engine,
	customerHandler *customerDelivery.CustomerHandler,
	channelHandler *channelDelivery.ChannelHandler,
	healthHandler *healthDelivery.HealthHandler,
	settingsHandler *SettingsHandler,
) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.GET("", customerHandler.ListCustomers)
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.DeleteCustomer)

			// Per-customer health scoring
			customers.GET("/:id/health-score", healthHandler.GetLatestScore)
			customers.GET("/:id/health-scores", healthHandler.GetScoreHistory)
			customers.POST("/:id/calculate", healthHandler.Calculate)
		}

		// Channel routes
		channels := api.Group("/channels")
		{
			channels.GET("", channelHandler.ListChannels)
			channels.POST("/sync", channelHandler.SyncChannels)
			channels.PUT("/:id", channelHandler.UpdateChannel)
			channels.PUT("/:id/monitoring", channelHandler.SetMonitoring)
			channels.PUT("/:id/link", channelHandler.LinkCustomer)
			channels.PUT("/:id/unlink", channelHandler.UnlinkCustomer)
			channels.POST("/:id/fetch-history", channelHandler.FetchHistory)
		}

		// Health score routes
		scores := api.Group("/health-scores")
		{
			scores.GET("", healthHandler.ListScores)
			scores.POST("/calculate-all", healthHandler.CalculateAll)
		}

		// Action item routes
		actions := api.Group("/action-items")
		{
			actions.GET("", healthHandler.ListActionItems)
			actions.PUT("/:id/status", healthHandler.UpdateActionStatus)
		}

		// Dashboard
		api.GET("/dashboard/summary", healthHandler.GetDashboard)

		// Settings routes - runtime configuration
		settings := api.Group("/settings")
		{
			settings.GET("", settingsHandler.GetSettings)
			settings.PUT("/:key", settingsHandler.UpdateSetting)
		}
	}
}
