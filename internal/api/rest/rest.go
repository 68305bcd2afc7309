package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/dropforge/airdrop-engine/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// User endpoints
		v1.POST("/users", handler.CreateUser)
		v1.GET("/users/:id", handler.GetUser)
		v1.PATCH("/users/:id", handler.UpdateUser)

		// Token endpoints (public read access)
		v1.GET("/tokens", handler.ListTokens)
		v1.GET("/tokens/:id", handler.GetToken)
		v1.GET("/tokens/:id/balance/:address", handler.GetTokenBalance)

		// Token minting (requires authentication)
		v1.POST("/tokens", middleware.Auth(authCfg), handler.CreateToken)

		// Airdrop campaign endpoints (public read, authenticated write)
		v1.GET("/airdrops", handler.ListAirdrops)
		v1.GET("/airdrops/:id", handler.GetAirdrop)
		v1.POST("/airdrops", middleware.Auth(authCfg), handler.CreateAirdrop)
		v1.PATCH("/airdrops/:id", middleware.Auth(authCfg), handler.UpdateAirdrop)

		// Activity and dashboard endpoints (public read access)
		v1.GET("/activities", handler.ListActivities)
		v1.GET("/dashboard/stats", handler.GetDashboardStats)

		// Interaction ingestion (requires API key authentication only)
		v1.POST("/interactions/contract", middleware.Auth(authCfg), handler.SubmitContractInteraction)
		v1.POST("/interactions/x", middleware.Auth(authCfg), handler.SubmitXInteraction)
	}
}
