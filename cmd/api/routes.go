package main

import (
	"github.com/Krusty2272/AiFitnessCoach/internal/httpapi"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Authentication is resolved per
// request inside the handlers: most of the surface treats identity as
// optional input, so there is no aborting auth middleware.
func registerRoutes(r *gin.Engine, h httpapi.Handlers) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/telegram", h.TelegramAuth)
		auth.GET("/me", h.Me)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.POST("/validate-token", h.ValidateToken)
	}
}
