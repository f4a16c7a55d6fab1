package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the page, form and JSON routes
func RegisterRoutes(router *gin.Engine, claims *ClaimHandler, health *HealthHandler) {
	router.GET("/health", health.Health)

	router.GET("/", claims.Index)
	router.POST("/claims", claims.SubmitClaim)
	router.POST("/evidence/toggle", claims.ToggleEvidence)
	router.POST("/reset", claims.Reset)

	api := router.Group("/api")
	{
		api.GET("/state", claims.State)
		api.POST("/claims", claims.SubmitClaimJSON)
	}
}
