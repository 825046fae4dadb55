package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/log"
)

var _ core.TurnJournal = (*TurnsRepo)(nil)

// TurnsRepo journals conversation turns per session id.
type TurnsRepo struct {
	db *sql.DB
}

func NewTurnsRepo(db *sql.DB) *TurnsRepo {
	return &TurnsRepo{db: db}
}

func (r *TurnsRepo) AppendTurn(ctx context.Context, sessionID, role, content string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSession(ctx, tx, sessionID); err != nil {
		return err
	}
	if err := insertTurn(ctx, tx, sessionID, role, content); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTurns returns the journaled turns in insertion order.
func (r *TurnsRepo) LoadTurns(ctx context.Context, sessionID string) ([]core.StoredTurn, error) {
	query := `SELECT id, session_id, role, content, created_at FROM turns WHERE session_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []core.StoredTurn
	for rows.Next() {
		var t core.StoredTurn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Str("session", sessionID).Int("count", len(turns)).Msg("loaded journaled turns")
	return turns, nil
}

// ResetTurns replaces every turn of the session with one seed turn.
func (r *TurnsRepo) ResetTurns(ctx context.Context, sessionID, seedRole, seedContent string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := ensureSession(ctx, tx, sessionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to clear turns: %w", err)
	}
	if err := insertTurn(ctx, tx, sessionID, seedRole, seedContent); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteSession drops the session and, through the cascade, its turns.
func (r *TurnsRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func ensureSession(ctx context.Context, tx *sql.Tx, sessionID string) error {
	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sessions (id) VALUES (?)`, sessionID); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func insertTurn(ctx context.Context, tx *sql.Tx, sessionID, role, content string) error {
	query := `INSERT INTO turns (session_id, role, content) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, sessionID, role, content); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}
