package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/chunker"
	"github.com/synthesize-ai/assistant-platform/internal/index"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// Errors the handler maps to caller-input responses.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyDocument       = errors.New("document contains no extractable text")
)

// allowedExtensions are the plain-text formats the platform indexes.
var allowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".csv": true,
}

// DocumentService chunks uploaded files and maintains the document index.
type DocumentService struct {
	index      *index.SQLiteIndex
	splitter   *chunker.Splitter
	uploadPath string
	logger     *logger.Logger
}

// NewDocumentService creates a document service.
func NewDocumentService(idx *index.SQLiteIndex, splitter *chunker.Splitter, uploadPath string, log *logger.Logger) *DocumentService {
	return &DocumentService{
		index:      idx,
		splitter:   splitter,
		uploadPath: uploadPath,
		logger:     log,
	}
}

// AddFile validates, stores, chunks, and indexes one uploaded file,
// returning the number of chunks created.
func (s *DocumentService) AddFile(ctx context.Context, filename string, data []byte) (int, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}

	if s.uploadPath != "" {
		if err := s.saveUpload(filename, data); err != nil {
			// The index, not the upload archive, is the source of truth.
			s.logger.Warn("failed to archive upload", zap.Error(err))
		}
	}

	pieces := s.splitter.Split(string(data))
	if len(pieces) == 0 {
		return 0, ErrEmptyDocument
	}

	chunks := make([]index.Chunk, len(pieces))
	for i, text := range pieces {
		chunks[i] = index.Chunk{
			ID:         uuid.Must(uuid.NewV7()).String(),
			Origin:     filename,
			ChunkIndex: i,
			Content:    text,
			FileType:   ext,
		}
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("indexing chunks: %w", err)
	}

	s.logger.Info("indexed document",
		zap.String("filename", filename),
		zap.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

func (s *DocumentService) saveUpload(filename string, data []byte) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return err
	}
	stored := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(filename))
	return os.WriteFile(filepath.Join(s.uploadPath, stored), data, 0644)
}

// Info describes the current index.
func (s *DocumentService) Info() model.DocumentsInfo {
	return model.DocumentsInfo{
		Count: s.index.Count(),
		Name:  index.CollectionName,
	}
}

// HasDocuments reports whether anything is indexed.
func (s *DocumentService) HasDocuments() bool {
	return s.index.Count() > 0
}
