package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AndrewYakovlev/aso-uni/internal/http/handlers"
	"github.com/AndrewYakovlev/aso-uni/internal/http/middleware"
)

// NewRouter wires the HTTP surface: health check, authentication endpoints
// and the gated storefront routes. The edge gate runs on everything.
func NewRouter(
	gate *middleware.EdgeGate,
	authHandlers *handlers.AuthHandlers,
	protectedHandlers *handlers.ProtectedHandlers,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gate.Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/anonymous", authHandlers.CreateAnonymous)
		auth.POST("/anonymous/activity", authHandlers.Activity)
		auth.POST("/send-otp", authHandlers.SendOTP)
		auth.POST("/verify-otp", authHandlers.VerifyOTP)
		auth.POST("/refresh", authHandlers.Refresh)
		auth.POST("/logout", authHandlers.Logout)
		auth.GET("/me", authHandlers.Me)
	}

	router.GET("/profile", protectedHandlers.Profile)
	router.GET("/panel/dashboard", protectedHandlers.PanelDashboard)

	return router
}
