package router

import (
	"context"
	"errors"
	"testing"

	"github.com/synthesize-ai/assistant-platform/internal/llm"
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

func TestParse(t *testing.T) {
	cases := []struct {
		reply string
		want  Decision
	}{
		{"SEARCH", Search},
		{"I recommend SEARCH", Search},
		{"search", Search},
		{"DOCUMENTS", Documents},
		{"Use DOCUMENTS please", Documents},
		{"BOTH", Both},
		{"BOTH sources needed", Both},
		{"DIRECT", Direct},
		{"just say hi", Direct},
		{"", Direct},
		{"I have no idea", Direct},
	}

	for _, c := range cases {
		if got := Parse(c.reply); got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.reply, got, c.want)
		}
	}
}

func TestClassify_ForcedReplies(t *testing.T) {
	cases := []struct {
		reply string
		want  Decision
	}{
		{"I recommend SEARCH", Search},
		{"Use DOCUMENTS please", Documents},
		{"BOTH sources needed", Both},
		{"just say hi", Direct},
	}

	for _, c := range cases {
		r := New(&mockLLM{reply: c.reply}, Config{}, logger.NewNop())
		got := r.Classify(context.Background(), "query", "", true)
		if got != c.want {
			t.Errorf("reply %q: got %v, want %v", c.reply, got, c.want)
		}
	}
}

func TestClassify_ModelFailureDefaultsToDirect(t *testing.T) {
	r := New(&mockLLM{err: errors.New("simulated timeout")}, Config{}, logger.NewNop())

	got := r.Classify(context.Background(), "query", "history", false)
	if got != Direct {
		t.Errorf("expected Direct on routing failure, got %v", got)
	}
}

func TestDecision_String(t *testing.T) {
	cases := map[Decision]string{
		Search:    "search",
		Documents: "documents",
		Both:      "both",
		Direct:    "direct",
	}
	for d, want := range cases {
		if d.String() != want {
			t.Errorf("Decision(%d).String() = %q, want %q", d, d.String(), want)
		}
	}
}
