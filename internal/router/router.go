// Package router classifies each query into the retrieval action to take.
package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

// Decision is the routing outcome for one query.
type Decision int

const (
	// Direct answers from the model alone, no external sources.
	Direct Decision = iota
	// Search consults the web search adapter.
	Search
	// Documents consults the document retrieval adapter.
	Documents
	// Both consults both adapters.
	Both
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Search:
		return "search"
	case Documents:
		return "documents"
	case Both:
		return "both"
	default:
		return "direct"
	}
}

const routingPromptTemplate = `Analyze the user's query and determine what actions are needed.

Chat History:
%s

User Query: %s
Available Documents: %t

Determine if the query needs:
1. Internet search (for current information, facts, news, general knowledge)
2. Document search (for information from uploaded documents)
3. Direct response (for casual conversation, greetings, simple questions)

Respond with exactly one of: "SEARCH", "DOCUMENTS", "DIRECT", "BOTH"
Decision:`

// Config tunes the router's model call.
type Config struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Router decides which adapters to invoke for a query by asking the model
// for one of four literal tokens.
type Router struct {
	llm    llm.Client
	cfg    Config
	logger *logger.Logger
}

// New creates a router.
func New(llmClient llm.Client, cfg Config, log *logger.Logger) *Router {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Router{llm: llmClient, cfg: cfg, logger: log}
}

// Classify routes the query. A failed or unparseable model call downgrades
// to Direct; classification never aborts a turn.
func (r *Router) Classify(ctx context.Context, query, history string, hasDocuments bool) Decision {
	prompt := fmt.Sprintf(routingPromptTemplate, history, query, hasDocuments)

	callCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	reply, err := llm.Prompt(callCtx, r.llm, r.cfg.Model, r.cfg.Temperature, prompt)
	cancel()
	if err != nil {
		r.logger.Warn("routing call failed, defaulting to direct", zap.Error(err))
		metrics.RoutingDecisionsTotal.WithLabelValues("direct").Inc()
		return Direct
	}

	decision := Parse(reply)
	metrics.RoutingDecisionsTotal.WithLabelValues(decision.String()).Inc()
	return decision
}

// Parse interprets a model reply by case-insensitive substring containment
// in the fixed priority order SEARCH, DOCUMENTS, BOTH. The order is the
// tie-break when a verbose reply mentions more than one keyword; anything
// unrecognized is Direct.
func Parse(reply string) Decision {
	upper := strings.ToUpper(reply)
	switch {
	case strings.Contains(upper, "SEARCH"):
		return Search
	case strings.Contains(upper, "DOCUMENTS"):
		return Documents
	case strings.Contains(upper, "BOTH"):
		return Both
	default:
		return Direct
	}
}
