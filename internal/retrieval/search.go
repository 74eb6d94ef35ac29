package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/search"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

const searchPromptTemplate = `Based on the user's query and the search results below, provide a comprehensive and accurate answer.

User Query: %s

Search Results:
%s

Provide a well-structured response that directly answers the user's question, includes relevant information from the search results, cites sources when appropriate, and is clear and concise.

Response:`

// SearchAdapterConfig tunes the web search adapter.
type SearchAdapterConfig struct {
	MaxResults     int
	SearchTimeout  time.Duration
	LLMTimeout     time.Duration
	Model          string
	Temperature    float64
	SnippetPreview int
}

// SearchAdapter answers queries from the web search provider, synthesizing
// one answer over the returned snippets.
type SearchAdapter struct {
	provider search.Provider
	llm      llm.Client
	cfg      SearchAdapterConfig
	logger   *logger.Logger
}

// NewSearchAdapter creates a search adapter.
func NewSearchAdapter(provider search.Provider, llmClient llm.Client, cfg SearchAdapterConfig, log *logger.Logger) *SearchAdapter {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.SearchTimeout <= 0 {
		cfg.SearchTimeout = 10 * time.Second
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	if cfg.SnippetPreview <= 0 {
		cfg.SnippetPreview = 200
	}
	return &SearchAdapter{
		provider: provider,
		llm:      llmClient,
		cfg:      cfg,
		logger:   log,
	}
}

// Name identifies the adapter.
func (a *SearchAdapter) Name() string {
	return "search"
}

// Retrieve performs the web search and synthesizes one answer from the
// hits. Provider and synthesis failures both come back as OK=false; they
// are never propagated as errors.
func (a *SearchAdapter) Retrieve(ctx context.Context, query, history string) Result {
	start := time.Now()

	searchCtx, cancel := context.WithTimeout(ctx, a.cfg.SearchTimeout)
	hits, err := a.provider.Search(searchCtx, query, a.cfg.MaxResults)
	cancel()
	if err != nil {
		a.logger.Warn("web search failed", zap.Error(err))
		metrics.RecordRetrieval(a.Name(), "provider_error", time.Since(start).Seconds())
		return failure(fmt.Sprintf("search provider error: %v", err))
	}

	if len(hits) == 0 {
		metrics.RecordRetrieval(a.Name(), "no_results", time.Since(start).Seconds())
		return failure("search returned no results")
	}

	prompt := fmt.Sprintf(searchPromptTemplate, query, formatHits(hits))

	llmCtx, cancel := context.WithTimeout(ctx, a.cfg.LLMTimeout)
	answer, err := llm.Prompt(llmCtx, a.llm, a.cfg.Model, a.cfg.Temperature, prompt)
	cancel()
	if err != nil {
		a.logger.Warn("search synthesis failed", zap.Error(err))
		metrics.RecordRetrieval(a.Name(), "synthesis_error", time.Since(start).Seconds())
		return failure(fmt.Sprintf("search synthesis error: %v", err))
	}

	sources := make([]model.Source, len(hits))
	for i, h := range hits {
		sources[i] = model.WebSource(h.Title, h.URL, truncate(h.Content, a.cfg.SnippetPreview))
	}

	metrics.RecordRetrieval(a.Name(), "ok", time.Since(start).Seconds())
	return Result{OK: true, Text: strings.TrimSpace(answer), Sources: sources}
}

func formatHits(hits []search.Result) string {
	var b strings.Builder
	for i, h := range hits {
		fmt.Fprintf(&b, "%d. Title: %s\n   URL: %s\n   Content: %s\n\n", i+1, h.Title, h.URL, h.Content)
	}
	return b.String()
}
