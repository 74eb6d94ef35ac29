package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/synthesize-ai/assistant-platform/internal/middleware"
	"github.com/synthesize-ai/assistant-platform/internal/service"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// SessionHandler handles session observability endpoints.
type SessionHandler struct {
	service *service.AssistantService
	logger  *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(svc *service.AssistantService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{service: svc, logger: log}
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Sessions())
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.service.Clear(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
