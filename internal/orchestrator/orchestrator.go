// Package orchestrator executes the routed action and merges the results
// into one answer with provenance.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/retrieval"
	"github.com/synthesize-ai/assistant-platform/internal/router"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

const finalPromptTemplate = `You are a helpful AI assistant. Based on the information gathered, provide a comprehensive response to the user's query.

Chat History:
%s

User Query: %s

Search Information:
%s

Document Information:
%s

Provide a helpful, accurate, and well-structured response. If you used multiple sources, integrate the information coherently. Always be honest about the limitations of your knowledge.

Response:`

const directPromptTemplate = `Based on the conversation history, provide a helpful response to the user's query.

Chat History:
%s

User Query: %s

Response:`

// apologyText is returned when even the direct model call fails.
const apologyText = "I apologize, but I encountered an error processing your request."

// Answer is the orchestrator's terminal output. Degraded is set only when
// no model call produced any text and the fixed apology was used instead.
type Answer struct {
	Text     string
	Sources  []model.Source
	Action   router.Decision
	Degraded bool
}

// Config tunes the orchestrator's own model calls.
type Config struct {
	Model       string
	Temperature float64
	LLMTimeout  time.Duration
}

// Orchestrator runs one of four entry branches and converges them through
// combine or the direct terminal. Each branch produces an immutable
// retrieval result; combine composes them without shared mutable state.
type Orchestrator struct {
	searchAdapter retrieval.Retriever
	docAdapter    retrieval.Retriever
	llm           llm.Client
	cfg           Config
	logger        *logger.Logger
}

// New creates an orchestrator.
func New(searchAdapter, docAdapter retrieval.Retriever, llmClient llm.Client, cfg Config, log *logger.Logger) *Orchestrator {
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 60 * time.Second
	}
	return &Orchestrator{
		searchAdapter: searchAdapter,
		docAdapter:    docAdapter,
		llm:           llmClient,
		cfg:           cfg,
		logger:        log,
	}
}

// Run executes the routed action. It never returns an error: provider and
// model failures degrade the answer instead of aborting the turn.
func (o *Orchestrator) Run(ctx context.Context, decision router.Decision, query, history string) Answer {
	var searchRes, docRes retrieval.Result

	switch decision {
	case router.Direct:
		return o.direct(ctx, decision, query, history)

	case router.Search:
		searchRes = o.searchAdapter.Retrieve(ctx, query, history)

	case router.Documents:
		docRes = o.docAdapter.Retrieve(ctx, query, history)

	case router.Both:
		// Both adapters run unconditionally and independently; a failure
		// in one must not suppress the other. Adapters absorb their own
		// failures, so the group only observes context cancellation.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			searchRes = o.searchAdapter.Retrieve(gctx, query, history)
			return nil
		})
		g.Go(func() error {
			docRes = o.docAdapter.Retrieve(gctx, query, history)
			return nil
		})
		_ = g.Wait()
	}

	return o.combine(ctx, decision, query, history, searchRes, docRes)
}

// combine gathers the usable adapter results into one final synthesis. If
// neither adapter produced usable text, it falls back to the direct branch
// rather than returning an empty answer.
func (o *Orchestrator) combine(ctx context.Context, decision router.Decision, query, history string, searchRes, docRes retrieval.Result) Answer {
	var searchInfo, docInfo string
	var sources []model.Source

	// Search sources first, then document sources, each adapter's
	// internal order preserved. A result is usable only when it carries
	// both text and provenance: a successful-but-empty outcome (the
	// "nothing relevant" case) contributes neither, so a turn whose only
	// result was filtered to empty falls through to direct generation
	// instead of attributing sourceless text to documents.
	if usable(searchRes) {
		searchInfo = searchRes.Text
		sources = append(sources, searchRes.Sources...)
	}
	if usable(docRes) {
		docInfo = docRes.Text
		sources = append(sources, docRes.Sources...)
	}

	if searchInfo == "" && docInfo == "" {
		o.logger.Info("no usable retrieval results, falling back to direct",
			zap.String("action", decision.String()))
		return o.direct(ctx, decision, query, history)
	}

	prompt := fmt.Sprintf(finalPromptTemplate, history, query, searchInfo, docInfo)

	llmCtx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
	answer, err := llm.Prompt(llmCtx, o.llm, o.cfg.Model, o.cfg.Temperature, prompt)
	cancel()
	if err != nil {
		o.logger.Warn("final synthesis failed, falling back to direct", zap.Error(err))
		return o.direct(ctx, decision, query, history)
	}

	metrics.TurnsTotal.WithLabelValues(decision.String(), "false").Inc()
	return Answer{
		Text:    strings.TrimSpace(answer),
		Sources: sources,
		Action:  decision,
	}
}

func usable(r retrieval.Result) bool {
	return r.OK && r.Text != "" && len(r.Sources) > 0
}

// direct generates an answer from query and history alone. A model failure
// here yields the fixed apology with empty sources, never an error.
func (o *Orchestrator) direct(ctx context.Context, decision router.Decision, query, history string) Answer {
	prompt := fmt.Sprintf(directPromptTemplate, history, query)

	llmCtx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
	answer, err := llm.Prompt(llmCtx, o.llm, o.cfg.Model, o.cfg.Temperature, prompt)
	cancel()
	if err != nil {
		o.logger.Error("direct response failed", zap.Error(err))
		metrics.TurnsTotal.WithLabelValues(decision.String(), "true").Inc()
		return Answer{Text: apologyText, Action: decision, Degraded: true}
	}

	metrics.TurnsTotal.WithLabelValues(decision.String(), "false").Inc()
	return Answer{Text: strings.TrimSpace(answer), Action: decision}
}
