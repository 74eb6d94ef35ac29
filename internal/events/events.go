// Package events publishes completed-turn events to NATS JetStream for
// downstream consumers. Publishing is best-effort and optional: without a
// configured broker every publish is a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/synthesize-ai/assistant-platform/pkg/logger"
)

const (
	// StreamName is the name of the turns stream.
	StreamName = "TURNS"

	// SubjectPrefix is the prefix for all turn subjects.
	SubjectPrefix = "turns"
)

// TurnEvent describes one completed chat turn.
type TurnEvent struct {
	SessionID   string    `json:"session_id"`
	Query       string    `json:"query"`
	Answer      string    `json:"answer"`
	Action      string    `json:"action"`
	SourceCount int       `json:"source_count"`
	Degraded    bool      `json:"degraded"`
	CreatedAt   time.Time `json:"created_at"`
}

// Publisher emits turn events.
type Publisher interface {
	TurnCompleted(ctx context.Context, ev *TurnEvent) error
	Close()
}

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// NewPublisher connects to NATS when a URL is configured, otherwise
// returns a no-op publisher.
func NewPublisher(ctx context.Context, cfg Config, log *logger.Logger) (Publisher, error) {
	if cfg.URL == "" {
		return NopPublisher{}, nil
	}
	return connect(ctx, cfg, log)
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) TurnCompleted(context.Context, *TurnEvent) error { return nil }
func (NopPublisher) Close()                                         {}

// JetStreamPublisher publishes turn events to a JetStream stream.
type JetStreamPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

func connect(ctx context.Context, cfg Config, log *logger.Logger) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Completed assistant turns",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// TurnSubject returns the subject for one session's turn events. Session
// IDs are free-form, so characters with subject syntax meaning are
// replaced before use as a token.
func TurnSubject(sessionID string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t':
			return '_'
		}
		return r
	}, sessionID)
	return fmt.Sprintf("%s.%s", SubjectPrefix, token)
}

// TurnCompleted publishes a turn event.
func (p *JetStreamPublisher) TurnCompleted(ctx context.Context, ev *TurnEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, TurnSubject(ev.SessionID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *JetStreamPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
