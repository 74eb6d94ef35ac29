package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/synthesize-ai/assistant-platform/internal/model"
)

func TestStore_AppendAndSummary(t *testing.T) {
	store := NewStore(10, 0)

	store.Append("s1", model.NewUserTurn("hello"))
	store.Append("s1", model.NewAssistantTurn("hi there", nil))

	sum := store.Summary("s1")
	if sum.TurnCount != 2 {
		t.Errorf("expected 2 turns, got %d", sum.TurnCount)
	}
	if sum.LastActivity.IsZero() {
		t.Error("expected last activity to be set")
	}
}

func TestStore_SummaryUnknownSession(t *testing.T) {
	store := NewStore(10, 0)

	sum := store.Summary("missing")
	if sum.TurnCount != 0 {
		t.Errorf("expected 0 turns for unknown session, got %d", sum.TurnCount)
	}
}

func TestStore_RecentWindow(t *testing.T) {
	store := NewStore(4, 0)

	for i := 0; i < 10; i++ {
		store.Append("s1", model.NewUserTurn(fmt.Sprintf("msg %d", i)))
	}

	recent := store.Recent("s1", 4)
	if len(recent) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(recent))
	}
	if recent[0].Text != "msg 6" || recent[3].Text != "msg 9" {
		t.Errorf("window returned wrong turns: %q .. %q", recent[0].Text, recent[3].Text)
	}
}

func TestStore_FormattedChronologicalOrder(t *testing.T) {
	store := NewStore(10, 0)

	store.Append("s1", model.NewUserTurn("what is Go?"))
	store.Append("s1", model.NewAssistantTurn("a programming language", nil))

	formatted := store.Formatted("s1")
	wantHuman := "Human: what is Go?"
	wantAssistant := "Assistant: a programming language"
	if !strings.Contains(formatted, wantHuman) || !strings.Contains(formatted, wantAssistant) {
		t.Fatalf("formatted history missing lines:\n%s", formatted)
	}
	if strings.Index(formatted, wantHuman) > strings.Index(formatted, wantAssistant) {
		t.Error("turns not in chronological order")
	}
}

func TestStore_FormattedEmptySession(t *testing.T) {
	store := NewStore(10, 0)
	if got := store.Formatted("nope"); got != "" {
		t.Errorf("expected empty history, got %q", got)
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := NewStore(10, 0)

	store.Append("s1", model.NewUserTurn("hello"))
	store.Clear("s1")
	if got := store.Summary("s1").TurnCount; got != 0 {
		t.Errorf("expected 0 turns after clear, got %d", got)
	}

	// Clearing again must not be an error and must leave the count at 0.
	store.Clear("s1")
	if got := store.Summary("s1").TurnCount; got != 0 {
		t.Errorf("expected 0 turns after second clear, got %d", got)
	}
}

func TestStore_Eviction(t *testing.T) {
	store := NewStore(10, 2)

	store.Append("s1", model.NewUserTurn("a"))
	store.Append("s2", model.NewUserTurn("b"))
	store.Append("s3", model.NewUserTurn("c"))

	if got := len(store.Sessions()); got != 2 {
		t.Errorf("expected 2 sessions after eviction, got %d", got)
	}
	if store.Summary("s1").TurnCount != 0 {
		t.Error("expected oldest session to be evicted")
	}
}

func TestStore_RecentReturnsCopy(t *testing.T) {
	store := NewStore(10, 0)
	store.Append("s1", model.NewUserTurn("original"))

	recent := store.Recent("s1", 10)
	recent[0].Text = "mutated"

	if store.Recent("s1", 10)[0].Text != "original" {
		t.Error("stored history was mutated through Recent's return value")
	}
}

func TestStore_ConcurrentSessions(t *testing.T) {
	store := NewStore(10, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		sessionID := fmt.Sprintf("s%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				store.Append(sessionID, model.NewUserTurn("q"))
				store.Append(sessionID, model.NewAssistantTurn("a", nil))
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		sessionID := fmt.Sprintf("s%d", i)
		if got := store.Summary(sessionID).TurnCount; got != 100 {
			t.Errorf("session %s: expected 100 turns, got %d", sessionID, got)
		}
	}
}

func TestStore_SessionsSorted(t *testing.T) {
	store := NewStore(10, 0)
	store.Append("old", model.NewUserTurn("a"))
	store.Append("new", model.NewUserTurn("b"))

	sessions := store.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].SessionID != "new" {
		t.Errorf("expected most recently active first, got %s", sessions[0].SessionID)
	}
}
