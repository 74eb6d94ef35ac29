// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/synthesize-ai/assistant-platform/internal/middleware"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/service"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// ChatHandler handles the chat endpoint.
type ChatHandler struct {
	service *service.AssistantService
	logger  *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.AssistantService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{service: svc, logger: log}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		req.SessionID = "default"
	}
	if err := middleware.ValidateSessionID(req.SessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Chat(r.Context(), req.SessionID, req.Query)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyQuery):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// The client is gone; nothing useful to write.
			writeError(w, http.StatusServiceUnavailable, "request cancelled")
		default:
			h.logger.Error("chat failed")
			writeError(w, http.StatusInternalServerError, "failed to process query")
		}
		return
	}

	sources := result.Sources
	if sources == nil {
		sources = []model.Source{}
	}

	writeJSON(w, http.StatusOK, model.ChatResponse{
		Success:   !result.Degraded,
		Response:  result.Answer,
		Sources:   sources,
		SessionID: req.SessionID,
	})
}
