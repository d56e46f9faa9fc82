// Package handlers contains HTTP handler functions for the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/pdf2json/internal/models"
	"github.com/Shimizu-Technology/pdf2json/internal/services/converter"
	"github.com/Shimizu-Technology/pdf2json/internal/version"
)

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Instead of global
// variables or service locators, we pass dependencies explicitly.
// This makes testing easy: just create a Handler with test dependencies.
type Handler struct {
	Converter    *converter.Converter
	Log          zerolog.Logger
	MaxPDFSize   int64
	AuthEnabled  bool
	WidgetSecret string // signs the token binding a widget page to its URL
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(conv *converter.Converter, log zerolog.Logger, maxPDFSize int64, authEnabled bool, widgetSecret string) *Handler {
	return &Handler{
		Converter:    conv,
		Log:          log,
		MaxPDFSize:   maxPDFSize,
		AuthEnabled:  authEnabled,
		WidgetSecret: widgetSecret,
	}
}

// HealthCheck returns the API health status.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:      "ok",
		Version:     version.Version,
		MaxPDFSize:  h.MaxPDFSize,
		AuthEnabled: h.AuthEnabled,
	})
}
