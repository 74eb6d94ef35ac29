package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/search"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// mockLLM implements llm.Client for testing.
type mockLLM struct {
	reply string
	err   error
}

func (m *mockLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.reply}, nil
}

func (m *mockLLM) Name() string     { return "mock" }
func (m *mockLLM) Models() []string { return nil }

// mockProvider implements search.Provider for testing.
type mockProvider struct {
	results []search.Result
	err     error
}

func (m *mockProvider) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func TestSearchAdapter_ProviderFailure(t *testing.T) {
	adapter := NewSearchAdapter(
		&mockProvider{err: errors.New("network down")},
		&mockLLM{reply: "unused"},
		SearchAdapterConfig{},
		logger.NewNop(),
	)

	res := adapter.Retrieve(context.Background(), "weather in Paris", "")
	if res.OK {
		t.Fatal("expected failure when provider errors")
	}
	if res.Diagnostic == "" {
		t.Error("expected diagnostic on failure")
	}
	if len(res.Sources) != 0 {
		t.Error("expected no sources on failure")
	}
}

func TestSearchAdapter_NoResults(t *testing.T) {
	adapter := NewSearchAdapter(
		&mockProvider{},
		&mockLLM{reply: "unused"},
		SearchAdapterConfig{},
		logger.NewNop(),
	)

	res := adapter.Retrieve(context.Background(), "obscure query", "")
	if res.OK {
		t.Fatal("expected failure on zero hits")
	}
}

func TestSearchAdapter_SynthesizesWithSources(t *testing.T) {
	hits := []search.Result{
		{Title: "First", URL: "https://a.example", Content: "sunny skies"},
		{Title: "Second", URL: "https://b.example", Content: "scattered clouds"},
		{Title: "Third", URL: "https://c.example", Content: "light rain"},
	}
	adapter := NewSearchAdapter(
		&mockProvider{results: hits},
		&mockLLM{reply: "It will be sunny."},
		SearchAdapterConfig{},
		logger.NewNop(),
	)

	res := adapter.Retrieve(context.Background(), "weather in Paris today?", "")
	if !res.OK {
		t.Fatalf("expected success, got diagnostic %q", res.Diagnostic)
	}
	if res.Text != "It will be sunny." {
		t.Errorf("unexpected answer: %q", res.Text)
	}
	if len(res.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(res.Sources))
	}
	for i, s := range res.Sources {
		if s.Type != model.SourceWeb {
			t.Errorf("source %d: expected web type, got %s", i, s.Type)
		}
		if s.Title != hits[i].Title || s.URL != hits[i].URL {
			t.Errorf("source %d: provider order not preserved", i)
		}
	}
}

func TestSearchAdapter_SnippetTruncation(t *testing.T) {
	long := strings.Repeat("x", 500)
	adapter := NewSearchAdapter(
		&mockProvider{results: []search.Result{{Title: "T", URL: "u", Content: long}}},
		&mockLLM{reply: "answer"},
		SearchAdapterConfig{SnippetPreview: 200},
		logger.NewNop(),
	)

	res := adapter.Retrieve(context.Background(), "q", "")
	if !res.OK {
		t.Fatal("expected success")
	}
	snippet := res.Sources[0].Snippet
	if len([]rune(snippet)) != 203 || !strings.HasSuffix(snippet, "...") {
		t.Errorf("expected 200-rune snippet with ellipsis, got %d runes", len([]rune(snippet)))
	}
}

func TestSearchAdapter_SynthesisFailure(t *testing.T) {
	adapter := NewSearchAdapter(
		&mockProvider{results: []search.Result{{Title: "T", URL: "u", Content: "c"}}},
		&mockLLM{err: errors.New("model overloaded")},
		SearchAdapterConfig{},
		logger.NewNop(),
	)

	res := adapter.Retrieve(context.Background(), "q", "")
	if res.OK {
		t.Fatal("expected failure when synthesis errors")
	}
}
