// Package memory holds per-session conversation history.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/pkg/metrics"
)

// Summary describes one session's history.
type Summary struct {
	SessionID    string
	TurnCount    int
	LastActivity time.Time
}

// session is the history of one conversation. Its mutex serializes turn
// operations for that session only; operations on other sessions never
// contend on it.
type session struct {
	mu         sync.Mutex
	turns      []model.Turn
	lastActive time.Time
}

// Store maps session identifiers to conversations. The store-level mutex
// guards only the map itself (create, delete, evict); it is never held
// while reading or appending turns.
type Store struct {
	window      int
	maxSessions int

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewStore creates a history store. window is how many recent turns feed
// prompt construction; maxSessions caps the session map, evicting the
// least-recently-active session when exceeded (0 means unbounded).
func NewStore(window, maxSessions int) *Store {
	if window <= 0 {
		window = 10
	}
	return &Store{
		window:      window,
		maxSessions: maxSessions,
		sessions:    make(map[string]*session),
	}
}

// Window returns the configured prompt window size in turns.
func (s *Store) Window() int {
	return s.window
}

func (s *Store) get(sessionID string) (*session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	return sess, ok
}

func (s *Store) getOrCreate(sessionID string) *session {
	if sess, ok := s.get(sessionID); ok {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return sess
	}

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}

	sess := &session{lastActive: time.Now()}
	s.sessions[sessionID] = sess
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return sess
}

// evictOldestLocked drops the least-recently-active session. Caller holds
// the store mutex.
func (s *Store) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, sess := range s.sessions {
		if oldestID == "" || sess.lastActive.Before(oldest) {
			oldestID = id
			oldest = sess.lastActive
		}
	}
	if oldestID != "" {
		delete(s.sessions, oldestID)
	}
}

// Append adds a turn to the session's history, creating the session on
// first contact.
func (s *Store) Append(sessionID string, turn model.Turn) {
	sess := s.getOrCreate(sessionID)

	sess.mu.Lock()
	sess.turns = append(sess.turns, turn)
	sess.lastActive = time.Now()
	sess.mu.Unlock()
}

// Recent returns the most recent n turns in chronological order. The slice
// is a copy; callers cannot mutate stored history through it.
func (s *Store) Recent(sessionID string, n int) []model.Turn {
	sess, ok := s.get(sessionID)
	if !ok {
		return nil
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	start := 0
	if n > 0 && len(sess.turns) > n {
		start = len(sess.turns) - n
	}
	out := make([]model.Turn, len(sess.turns)-start)
	copy(out, sess.turns[start:])
	return out
}

// Formatted renders the windowed history as prompt context, one
// "Human:"/"Assistant:" line per turn in chronological order.
func (s *Store) Formatted(sessionID string) string {
	turns := s.Recent(sessionID, s.window)
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case model.RoleUser:
			b.WriteString("Human: ")
		case model.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// Clear removes the session entirely. Clearing an absent session is not an
// error.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()
}

// Summary reports the turn count and last activity for a session. Unknown
// sessions report zero turns.
func (s *Store) Summary(sessionID string) Summary {
	sess, ok := s.get(sessionID)
	if !ok {
		return Summary{SessionID: sessionID}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return Summary{
		SessionID:    sessionID,
		TurnCount:    len(sess.turns),
		LastActivity: sess.lastActive,
	}
}

// Sessions lists summaries for every live session, most recently active
// first.
func (s *Store) Sessions() []Summary {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	summaries := make([]Summary, 0, len(ids))
	for _, id := range ids {
		if sum := s.Summary(id); sum.TurnCount > 0 || !sum.LastActivity.IsZero() {
			summaries = append(summaries, sum)
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
	return summaries
}
