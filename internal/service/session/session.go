package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/log"
)

var (
	ErrBusy     = errors.New("a request is already running for this session")
	ErrNotFound = errors.New("session not found")
)

// Session is the explicit per-user context handed to a runner. It owns the
// conversation, the completion credential and the single-writer lock.
type Session struct {
	ID string

	conv    *Conversation
	journal core.TurnJournal

	busy sync.Mutex

	mu       sync.RWMutex
	apiKey   string
	lastSeen time.Time
}

func New(id, seed string, journal core.TurnJournal) *Session {
	return &Session{
		ID:       id,
		conv:     NewConversation(seed),
		journal:  journal,
		lastSeen: time.Now(),
	}
}

// Begin takes the request lock. Callers must invoke the returned func when
// the cycle ends.
func (s *Session) Begin() (func(), error) {
	if !s.busy.TryLock() {
		return nil, ErrBusy
	}
	s.touch()
	return func() {
		s.touch()
		s.busy.Unlock()
	}, nil
}

// AppendTurn adds a turn and mirrors it to the journal. Journal failures are
// logged; the in-memory conversation stays authoritative.
func (s *Session) AppendTurn(ctx context.Context, role, text string) {
	s.conv.Append(role, text)
	if s.journal == nil {
		return
	}
	if err := s.journal.AppendTurn(ctx, s.ID, role, text); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session", s.ID).Msg("failed to journal turn")
	}
}

func (s *Session) Reset(ctx context.Context) {
	s.conv.Reset()
	s.touch()
	if s.journal == nil {
		return
	}
	if err := s.journal.ResetTurns(ctx, s.ID, core.RoleAssistant, s.conv.Seed()); err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("session", s.ID).Msg("failed to reset journal")
	}
}

func (s *Session) Turns() []Turn {
	return s.conv.Turns()
}

func (s *Session) Conversation() *Conversation {
	return s.conv
}

func (s *Session) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = key
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// load replays journaled turns, seeding the journal when it has none.
func (s *Session) load(ctx context.Context) error {
	if s.journal == nil {
		return nil
	}
	stored, err := s.journal.LoadTurns(ctx, s.ID)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return s.journal.AppendTurn(ctx, s.ID, core.RoleAssistant, s.conv.Seed())
	}
	turns := make([]Turn, 0, len(stored))
	for _, t := range stored {
		turns = append(turns, Turn{Role: t.Role, Text: t.Content})
	}
	s.conv.restore(turns)
	return nil
}
