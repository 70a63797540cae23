package ports

import (
	"context"
	"time"

	"aistats/domain/core"
)

// TurnRecord is a committed conversation turn as persisted in the turn log
type TurnRecord struct {
	ID        core.TurnID    `db:"id" json:"id"`
	SessionID core.SessionID `db:"session_id" json:"session_id"`
	Role      string         `db:"role" json:"role"`
	Content   string         `db:"content" json:"content"`
	Results   []byte         `db:"results" json:"results,omitempty"` // JSON array of analysis results
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// TurnRecorder persists committed turns. Recording is best-effort for callers.
type TurnRecorder interface {
	RecordTurns(ctx context.Context, turns []TurnRecord) error
	ListTurns(ctx context.Context, sessionID core.SessionID, limit int) ([]TurnRecord, error)
}
