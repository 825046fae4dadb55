package command

import (
	"context"

	"github.com/sandevgo/searchbot/internal/service/session"
)

// Sessions is the part of session.Manager the commands need.
type Sessions interface {
	Get(id string) (*session.Session, error)
	Reset(ctx context.Context, id string) error
}
