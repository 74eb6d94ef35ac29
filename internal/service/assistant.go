// Package service provides business logic for the assistant platform.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/synthesize-ai/assistant-platform/internal/events"
	"github.com/synthesize-ai/assistant-platform/internal/memory"
	"github.com/synthesize-ai/assistant-platform/internal/model"
	"github.com/synthesize-ai/assistant-platform/internal/orchestrator"
	"github.com/synthesize-ai/assistant-platform/internal/router"
	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

// ErrEmptyQuery is returned when a chat query has no content.
var ErrEmptyQuery = errors.New("query cannot be empty")

// ChatResult is the façade's answer for one turn.
type ChatResult struct {
	Answer   string
	Sources  []model.Source
	Action   router.Decision
	Degraded bool
}

// AssistantService ties the history store, router, and orchestrator
// together per session. Its Chat contract is total for provider problems:
// they degrade the answer, they never surface as errors.
type AssistantService struct {
	store        *memory.Store
	router       *router.Router
	orchestrator *orchestrator.Orchestrator
	hasDocuments func() bool
	publisher    events.Publisher
	logger       *logger.Logger
	tracer       trace.Tracer
}

// NewAssistantService creates the session façade.
func NewAssistantService(
	store *memory.Store,
	rt *router.Router,
	orch *orchestrator.Orchestrator,
	hasDocuments func() bool,
	publisher events.Publisher,
	log *logger.Logger,
) *AssistantService {
	return &AssistantService{
		store:        store,
		router:       rt,
		orchestrator: orch,
		hasDocuments: hasDocuments,
		publisher:    publisher,
		logger:       log,
		tracer:       otel.Tracer("assistant-platform/service"),
	}
}

// Chat processes one query for a session: snapshot history, classify, run
// the orchestrated branch, then append both turns. The error return covers
// caller-input problems and cancellation only; provider failures come back
// inside the result.
func (s *AssistantService) Chat(ctx context.Context, sessionID, query string) (*ChatResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := s.tracer.Start(ctx, "chat")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID))

	log := s.logger.WithSession(sessionID)
	log.Info("processing query")

	// Snapshot the history up front; no session lock is held while the
	// router, adapters, or model calls are in flight.
	history := s.store.Formatted(sessionID)

	decision := s.router.Classify(ctx, query, history, s.hasDocuments())
	span.SetAttributes(attribute.String("action", decision.String()))

	answer := s.orchestrator.Run(ctx, decision, query, history)

	// A cancelled turn appends nothing: the caller never saw the answer.
	if err := ctx.Err(); err != nil {
		log.Warn("turn cancelled before history update", zap.Error(err))
		return nil, err
	}

	s.store.Append(sessionID, model.NewUserTurn(query))
	s.store.Append(sessionID, model.NewAssistantTurn(answer.Text, answer.Sources))

	s.publishTurn(sessionID, query, answer)

	log.Info("generated response",
		zap.String("action", decision.String()),
		zap.Int("sources", len(answer.Sources)),
		zap.Bool("degraded", answer.Degraded),
	)

	return &ChatResult{
		Answer:   answer.Text,
		Sources:  answer.Sources,
		Action:   answer.Action,
		Degraded: answer.Degraded,
	}, nil
}

// publishTurn emits the completed-turn event best effort; the chat result
// does not depend on the broker.
func (s *AssistantService) publishTurn(sessionID, query string, answer orchestrator.Answer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.publisher.TurnCompleted(ctx, &events.TurnEvent{
		SessionID:   sessionID,
		Query:       query,
		Answer:      answer.Text,
		Action:      answer.Action.String(),
		SourceCount: len(answer.Sources),
		Degraded:    answer.Degraded,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.logger.Warn("failed to publish turn event", zap.Error(err))
	}
}

// Clear wipes a session's history. Clearing twice is not an error.
func (s *AssistantService) Clear(sessionID string) {
	s.store.Clear(sessionID)
	s.logger.WithSession(sessionID).Info("cleared conversation")
}

// Summary reports one session's history summary.
func (s *AssistantService) Summary(sessionID string) memory.Summary {
	return s.store.Summary(sessionID)
}

// Sessions lists summaries for every active session.
func (s *AssistantService) Sessions() []model.SessionInfo {
	summaries := s.store.Sessions()
	infos := make([]model.SessionInfo, len(summaries))
	for i, sum := range summaries {
		info := model.SessionInfo{
			SessionID:    sum.SessionID,
			MessageCount: sum.TurnCount,
		}
		if !sum.LastActivity.IsZero() {
			info.LastActivity = sum.LastActivity.Format(time.RFC3339)
		}
		infos[i] = info
	}
	return infos
}
