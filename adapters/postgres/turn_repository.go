package postgres

import (
	"context"

	"aistats/domain/core"
	"aistats/internal/errors"
	"aistats/ports"

	"github.com/jmoiron/sqlx"
)

// TurnRepository implements ports.TurnRecorder for PostgreSQL
type TurnRepository struct {
	db *sqlx.DB
}

// NewTurnRepository creates a new PostgreSQL turn repository
func NewTurnRepository(db *sqlx.DB) *TurnRepository {
	return &TurnRepository{db: db}
}

var _ ports.TurnRecorder = (*TurnRepository)(nil)

// RecordTurns inserts the turns of one exchange in a single transaction
func (r *TurnRepository) RecordTurns(ctx context.Context, turns []ports.TurnRecord) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to begin transaction"))
	}
	defer tx.Rollback()

	for _, t := range turns {
		var results interface{}
		if len(t.Results) > 0 {
			results = t.Results
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chat_turns (id, session_id, role, content, results, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, string(t.ID), string(t.SessionID), t.Role, t.Content, results, t.CreatedAt)
		if err != nil {
			return errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to insert turn %s", t.ID))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to commit turns"))
	}
	return nil
}

// ListTurns returns a session's turns oldest first. limit > 0 keeps only the most recent ones.
func (r *TurnRepository) ListTurns(ctx context.Context, sessionID core.SessionID, limit int) ([]ports.TurnRecord, error) {
	query := `
		SELECT id, session_id, role, content, results, created_at
		FROM chat_turns
		WHERE session_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{string(sessionID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var records []ports.TurnRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to list turns"))
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}
