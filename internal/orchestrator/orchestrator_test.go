package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/retrieval"
	"github.com/synthesize-ai/assistant-platform/internal/router"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// scriptedLLM implements llm.Client, returning canned responses in order.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []scriptedResponse
	calls     int
}

type scriptedResponse struct {
	text string
	err  error
}

func (m *scriptedLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if len(m.responses) == 0 {
		return &llm.CompletionResponse{Content: "default"}, nil
	}
	r := m.responses[0]
	m.responses = m.responses[1:]
	if r.err != nil {
		return nil, r.err
	}
	return &llm.CompletionResponse{Content: r.text}, nil
}

func (m *scriptedLLM) Name() string     { return "scripted" }
func (m *scriptedLLM) Models() []string { return nil }

// stubRetriever implements retrieval.Retriever with a fixed result.
type stubRetriever struct {
	name   string
	result retrieval.Result
	calls  int
	mu     sync.Mutex
}

func (s *stubRetriever) Retrieve(ctx context.Context, query, history string) retrieval.Result {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.result
}

func (s *stubRetriever) Name() string { return s.name }

func (s *stubRetriever) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func webResult(text string, n int) retrieval.Result {
	sources := make([]model.Source, n)
	for i := range sources {
		sources[i] = model.WebSource("title", "https://example.com", "snippet")
	}
	return retrieval.Result{OK: true, Text: text, Sources: sources}
}

func docResult(text string, n int) retrieval.Result {
	sources := make([]model.Source, n)
	for i := range sources {
		sources[i] = model.DocumentSource("file.txt", i, "preview", 0.2)
	}
	return retrieval.Result{OK: true, Text: text, Sources: sources}
}

func newOrchestrator(searchRes, docRes retrieval.Result, llmClient llm.Client) (*Orchestrator, *stubRetriever, *stubRetriever) {
	searchAd := &stubRetriever{name: "search", result: searchRes}
	docAd := &stubRetriever{name: "documents", result: docRes}
	return New(searchAd, docAd, llmClient, Config{}, logger.NewNop()), searchAd, docAd
}

func TestRun_DirectBranch(t *testing.T) {
	o, searchAd, docAd := newOrchestrator(retrieval.Result{}, retrieval.Result{},
		&scriptedLLM{responses: []scriptedResponse{{text: "hi there"}}})

	ans := o.Run(context.Background(), router.Direct, "hello", "")
	if ans.Text != "hi there" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 0 {
		t.Error("direct answers carry no sources")
	}
	if ans.Degraded {
		t.Error("successful direct answer must not be degraded")
	}
	if searchAd.callCount() != 0 || docAd.callCount() != 0 {
		t.Error("direct branch must not invoke adapters")
	}
}

func TestRun_DirectBranchModelFailure(t *testing.T) {
	o, _, _ := newOrchestrator(retrieval.Result{}, retrieval.Result{},
		&scriptedLLM{responses: []scriptedResponse{{err: errors.New("outage")}}})

	ans := o.Run(context.Background(), router.Direct, "hello", "")
	if ans.Text != apologyText {
		t.Errorf("expected apology, got %q", ans.Text)
	}
	if !ans.Degraded {
		t.Error("apology answer must be marked degraded")
	}
	if len(ans.Sources) != 0 {
		t.Error("apology carries no sources")
	}
}

func TestRun_SearchBranch(t *testing.T) {
	o, _, docAd := newOrchestrator(webResult("search says", 3), retrieval.Result{},
		&scriptedLLM{responses: []scriptedResponse{{text: "final answer"}}})

	ans := o.Run(context.Background(), router.Search, "weather in Paris today?", "")
	if ans.Text != "final answer" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(ans.Sources))
	}
	for i, s := range ans.Sources {
		if s.Type != model.SourceWeb {
			t.Errorf("source %d: expected web, got %s", i, s.Type)
		}
	}
	if docAd.callCount() != 0 {
		t.Error("search branch must not invoke the document adapter")
	}
}

func TestRun_DocumentsBranch(t *testing.T) {
	o, searchAd, _ := newOrchestrator(retrieval.Result{}, docResult("doc says", 1),
		&scriptedLLM{responses: []scriptedResponse{{text: "from your report"}}})

	ans := o.Run(context.Background(), router.Documents, "summarize the uploaded report", "")
	if ans.Text != "from your report" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 1 || ans.Sources[0].Type != model.SourceDocument {
		t.Fatalf("expected 1 document source, got %+v", ans.Sources)
	}
	if searchAd.callCount() != 0 {
		t.Error("documents branch must not invoke the search adapter")
	}
}

func TestRun_BothRunsBothAdapters(t *testing.T) {
	o, searchAd, docAd := newOrchestrator(webResult("web", 2), docResult("docs", 1),
		&scriptedLLM{responses: []scriptedResponse{{text: "merged"}}})

	ans := o.Run(context.Background(), router.Both, "q", "")
	if searchAd.callCount() != 1 || docAd.callCount() != 1 {
		t.Fatal("both adapters must run")
	}
	if len(ans.Sources) != 3 {
		t.Fatalf("expected 3 merged sources, got %d", len(ans.Sources))
	}
	// Search sources first, then document sources.
	if ans.Sources[0].Type != model.SourceWeb || ans.Sources[2].Type != model.SourceDocument {
		t.Error("sources not ordered search-first")
	}
}

func TestRun_BothWithSearchFailure(t *testing.T) {
	o, searchAd, docAd := newOrchestrator(
		retrieval.Result{OK: false, Diagnostic: "provider down"},
		docResult("docs only", 2),
		&scriptedLLM{responses: []scriptedResponse{{text: "from documents"}}})

	ans := o.Run(context.Background(), router.Both, "q", "")
	if searchAd.callCount() != 1 || docAd.callCount() != 1 {
		t.Fatal("a failing adapter must not suppress the other")
	}
	if ans.Text != "from documents" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 2 {
		t.Fatalf("expected only document sources, got %d", len(ans.Sources))
	}
	for _, s := range ans.Sources {
		if s.Type != model.SourceDocument {
			t.Error("expected only document-origin sources")
		}
	}
	if ans.Degraded {
		t.Error("a partial failure is not a degraded answer")
	}
}

func TestRun_CombineFallsBackToDirectWhenNothingUsable(t *testing.T) {
	// Both adapters fail; combine must fall back to direct generation.
	o, _, _ := newOrchestrator(
		retrieval.Result{OK: false, Diagnostic: "down"},
		retrieval.Result{OK: false, Diagnostic: "down"},
		&scriptedLLM{responses: []scriptedResponse{{text: "direct fallback"}}})

	ans := o.Run(context.Background(), router.Both, "q", "")
	if ans.Text != "direct fallback" {
		t.Errorf("unexpected answer: %q", ans.Text)
	}
	if len(ans.Sources) != 0 {
		t.Error("fallback answer must not carry sources")
	}
}

func TestRun_FilteredEmptyDocumentsFallsBackToDirect(t *testing.T) {
	// A successful-but-empty document result (relevance filter removed
	// every candidate) carries informational text but no sources; it
	// must not be attributed to documents, so the turn falls back to
	// direct generation.
	o, _, _ := newOrchestrator(
		retrieval.Result{},
		retrieval.Result{OK: true, Text: "nothing sufficiently relevant"},
		&scriptedLLM{responses: []scriptedResponse{{text: "direct instead"}}})

	ans := o.Run(context.Background(), router.Documents, "q", "")
	if ans.Text != "direct instead" {
		t.Errorf("expected direct fallback, got %q", ans.Text)
	}
	if len(ans.Sources) != 0 {
		t.Error("expected no sources from fallback")
	}
}

func TestRun_FinalSynthesisFailureFallsBackToDirect(t *testing.T) {
	o, _, _ := newOrchestrator(webResult("web", 1), retrieval.Result{},
		&scriptedLLM{responses: []scriptedResponse{
			{err: errors.New("synthesis failed")},
			{text: "direct save"},
		}})

	ans := o.Run(context.Background(), router.Search, "q", "")
	if ans.Text != "direct save" {
		t.Errorf("expected direct fallback answer, got %q", ans.Text)
	}
}

func TestRun_TotalOutage(t *testing.T) {
	o, _, _ := newOrchestrator(
		retrieval.Result{OK: false, Diagnostic: "down"},
		retrieval.Result{OK: false, Diagnostic: "down"},
		&scriptedLLM{responses: []scriptedResponse{{err: errors.New("outage")}}})

	ans := o.Run(context.Background(), router.Both, "q", "")
	if ans.Text != apologyText {
		t.Errorf("expected apology under total outage, got %q", ans.Text)
	}
	if !ans.Degraded {
		t.Error("total outage must mark the answer degraded")
	}
}
