// Package router sets up all HTTP routes for the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf2json/internal/config"
	"github.com/Shimizu-Technology/pdf2json/internal/handlers"
	"github.com/Shimizu-Technology/pdf2json/internal/middleware"
)

// Setup creates and configures the Gin router with all routes. The returned
// function stops the rate limiter's background cleanup.
func Setup(cfg *config.Config, h *handlers.Handler) (*gin.Engine, func()) {
	r := gin.Default()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	rateLimiter, stop := middleware.NewRateLimiter(cfg.RateLimit)

	// --- Public Routes (no auth required) ---
	r.GET("/api/v1/health", h.HealthCheck)

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// Widget: the button page and its trigger. Rate limited but never
	// authenticated, since a plain form post can't carry a bearer token.
	widget := r.Group("/widget")
	widget.Use(rateLimiter.RateLimit())
	{
		widget.GET("", h.ServeWidget)
		widget.POST("/convert", h.TriggerWidget)
	}

	// --- Protected Routes (JWT when JWT_SECRET is set) ---
	// Auth runs first so authenticated callers are rate limited by subject.
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(cfg.JWTSecret))
	protected.Use(rateLimiter.RateLimit())
	{
		protected.POST("/convert", h.ConvertPDF)
	}

	return r, stop
}
