package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/gpp-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
// Only the update trigger requires credentials
func SetupRoutes(router *gin.Engine, handler Handler, auth *middleware.Authenticator) {
	// Health check endpoint (no version prefix)
	router.GET("/healthz", handler.HealthCheck)

	v1 := router.Group("/v1")
	{
		v1.GET("/state", handler.GetState)
		v1.GET("/table", handler.GetTable)
		v1.GET("/table.csv", handler.GetTableCSV)
		v1.GET("/regions/:key", handler.GetRegion)

		v1.POST("/updates", middleware.Auth(auth), handler.TriggerUpdate)
	}
}
