// Package retrieval provides the adapters that normalize the external
// search provider and the document index behind one result contract.
package retrieval

import (
	"context"

	"github.com/synthesize-ai/assistant-platform/internal/index"
	"github.com/synthesize-ai/assistant-platform/internal/model"
)

// Result is the uniform adapter output. OK=false means the underlying
// provider failed (Diagnostic says why); OK=true with empty sources is a
// successful-but-empty outcome, distinct from failure.
type Result struct {
	OK         bool
	Text       string
	Sources    []model.Source
	Diagnostic string
}

// Retriever is the contract both adapters satisfy. Implementations absorb
// every provider failure into the Result; they never return an error.
type Retriever interface {
	// Retrieve answers the query from this adapter's source, using the
	// formatted conversation history as context.
	Retrieve(ctx context.Context, query, history string) Result

	// Name identifies the adapter in logs and metrics.
	Name() string
}

// Index is the document index surface the document adapter depends on.
type Index interface {
	Search(ctx context.Context, query string, topK int) ([]index.Match, error)
}

func failure(diagnostic string) Result {
	return Result{OK: false, Diagnostic: diagnostic}
}

// truncate shortens s to at most n runes, appending an ellipsis when cut.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
