// Package models defines the data structures shared across the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// Request/response shapes live here so handlers, the CLI and tests agree
// on the wire format without importing each other.
package models

// ConvertRequest is the JSON body accepted by POST /api/v1/convert and
// POST /widget/convert when the PDF lives behind a URL.
type ConvertRequest struct {
	URL string `json:"url" form:"url"`
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	MaxPDFSize  int64  `json:"max_pdf_size"`
	AuthEnabled bool   `json:"auth_enabled"`
}
