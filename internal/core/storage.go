package core

import (
	"context"
	"time"
)

// StoredTurn is one journaled conversation turn.
type StoredTurn struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnJournal mirrors session conversations. It is only ever read back for the
// same session id; nothing crosses sessions.
type TurnJournal interface {
	AppendTurn(ctx context.Context, sessionID, role, content string) error
	LoadTurns(ctx context.Context, sessionID string) ([]StoredTurn, error)
	ResetTurns(ctx context.Context, sessionID, seedRole, seedContent string) error
	DeleteSession(ctx context.Context, sessionID string) error
}
