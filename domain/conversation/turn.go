package conversation

import (
	"time"

	"aistats/domain/core"
	"aistats/domain/stats"
)

// Role identifies who produced a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one committed entry of a session's conversation
type Turn struct {
	ID        core.TurnID    `json:"id"`
	Role      Role           `json:"role"`
	Content   string         `json:"content"`
	Results   []stats.Result `json:"results,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewTurn stamps a turn with a fresh id and the current time
func NewTurn(role Role, content string, results []stats.Result) Turn {
	return Turn{
		ID:        core.TurnID(core.NewID()),
		Role:      role,
		Content:   content,
		Results:   results,
		CreatedAt: time.Now().UTC(),
	}
}
