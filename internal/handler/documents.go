package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/synthesize-ai/assistant-platform/internal/middleware"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/service"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// maxUploadBytes bounds multipart uploads (16MB).
const maxUploadBytes = 16 << 20

// DocumentHandler handles upload and index info endpoints.
type DocumentHandler struct {
	service *service.DocumentService
	logger  *logger.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc *service.DocumentService, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{service: svc, logger: log}
}

// Upload handles POST /api/v1/upload
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if err := middleware.ValidateFilename(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	chunks, err := h.service.AddFile(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedFileType):
			writeError(w, http.StatusBadRequest, "unsupported file type; allowed: .txt, .md, .csv")
		case errors.Is(err, service.ErrEmptyDocument):
			writeError(w, http.StatusBadRequest, "document contains no extractable text")
		default:
			h.logger.Error("failed to index upload")
			writeError(w, http.StatusInternalServerError, "failed to process file")
		}
		return
	}

	writeJSON(w, http.StatusOK, model.FileUploadResponse{
		Success:       true,
		Message:       fmt.Sprintf("Successfully processed %s", header.Filename),
		Filename:      header.Filename,
		ChunksCreated: chunks,
	})
}

// Info handles GET /api/v1/documents/info
func (h *DocumentHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Info())
}
