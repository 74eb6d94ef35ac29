package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/index"
	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

const documentPromptTemplate = `You are a helpful assistant that answers questions based on uploaded documents and conversation history.

Chat History:
%s

Context from Documents:
%s

User Question: %s

Provide a comprehensive answer based on the document context. If the information is not available in the documents, clearly state that. Always cite which document or section your information comes from when possible.

Answer:`

const (
	noDocumentsText     = "I don't have any relevant documents to answer your question. Please upload some documents first."
	nothingRelevantText = "I couldn't find sufficiently relevant information in the uploaded documents to answer your question."
)

// DocumentAdapterConfig tunes the document retrieval adapter.
type DocumentAdapterConfig struct {
	TopK int
	// Threshold filters matches: a match is kept only when its score is
	// strictly below this value (scores are distances, lower is better).
	Threshold      float64
	LLMTimeout     time.Duration
	Model          string
	Temperature    float64
	ContentPreview int
}

// DocumentAdapter answers queries from the document index, synthesizing
// one answer over the matches that pass the relevance threshold.
type DocumentAdapter struct {
	index  Index
	llm    llm.Client
	cfg    DocumentAdapterConfig
	logger *logger.Logger
}

// NewDocumentAdapter creates a document adapter.
func NewDocumentAdapter(idx Index, llmClient llm.Client, cfg DocumentAdapterConfig, log *logger.Logger) *DocumentAdapter {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.8
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	if cfg.ContentPreview <= 0 {
		cfg.ContentPreview = 200
	}
	return &DocumentAdapter{
		index:  idx,
		llm:    llmClient,
		cfg:    cfg,
		logger: log,
	}
}

// Name identifies the adapter.
func (a *DocumentAdapter) Name() string {
	return "documents"
}

// Retrieve searches the index, filters by the relevance threshold, and
// synthesizes an answer. A filtered-to-empty candidate set is a successful
// empty outcome (OK=true, no sources), not a failure.
func (a *DocumentAdapter) Retrieve(ctx context.Context, query, history string) Result {
	start := time.Now()

	matches, err := a.index.Search(ctx, query, a.cfg.TopK)
	if err != nil {
		a.logger.Warn("document search failed", zap.Error(err))
		metrics.RecordRetrieval(a.Name(), "provider_error", time.Since(start).Seconds())
		return failure(fmt.Sprintf("document index error: %v", err))
	}

	if len(matches) == 0 {
		metrics.RecordRetrieval(a.Name(), "empty", time.Since(start).Seconds())
		return Result{OK: true, Text: noDocumentsText}
	}

	filtered := matches[:0:0]
	for _, m := range matches {
		if m.Score < a.cfg.Threshold {
			filtered = append(filtered, m)
		}
	}

	if len(filtered) == 0 {
		metrics.RecordRetrieval(a.Name(), "filtered_empty", time.Since(start).Seconds())
		return Result{OK: true, Text: nothingRelevantText}
	}

	prompt := fmt.Sprintf(documentPromptTemplate, history, formatMatches(filtered), query)

	llmCtx, cancel := context.WithTimeout(ctx, a.cfg.LLMTimeout)
	answer, err := llm.Prompt(llmCtx, a.llm, a.cfg.Model, a.cfg.Temperature, prompt)
	cancel()
	if err != nil {
		a.logger.Warn("document synthesis failed", zap.Error(err))
		metrics.RecordRetrieval(a.Name(), "synthesis_error", time.Since(start).Seconds())
		return failure(fmt.Sprintf("document synthesis error: %v", err))
	}

	sources := make([]model.Source, len(filtered))
	for i, m := range filtered {
		sources[i] = model.DocumentSource(
			m.Chunk.Origin,
			m.Chunk.ChunkIndex,
			truncate(m.Chunk.Content, a.cfg.ContentPreview),
			m.Score,
		)
	}

	metrics.RecordRetrieval(a.Name(), "ok", time.Since(start).Seconds())
	return Result{OK: true, Text: strings.TrimSpace(answer), Sources: sources}
}

func formatMatches(matches []index.Match) string {
	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "Document %d (Source: %s, Chunk: %d):\n%s\n\n",
			i+1, m.Chunk.Origin, m.Chunk.ChunkIndex, m.Chunk.Content)
	}
	return b.String()
}
