// Package model defines data structures for the assistant platform.
package model

import (
	"time"
)

// Role represents the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one exchange unit in a conversation. Turns are immutable once
// created and only ever appended to a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Sources   []Source  `json:"sources,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserTurn creates a user turn.
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text, CreatedAt: time.Now()}
}

// NewAssistantTurn creates an assistant turn with its provenance.
func NewAssistantTurn(text string, sources []Source) Turn {
	return Turn{Role: RoleAssistant, Text: text, Sources: sources, CreatedAt: time.Now()}
}
