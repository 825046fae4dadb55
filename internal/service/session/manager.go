package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/log"
)

// Manager owns the session lifecycle: create on first use, reset on request,
// destroy on end or idle expiry.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl     time.Duration
	seed    func() string
	journal core.TurnJournal
	now     func() time.Time
}

// NewManager builds a manager. seed is asked for the greeting every time a
// conversation is created so prompt reloads apply to new sessions. journal
// may be nil.
func NewManager(cfg core.SessionConfig, seed func() string, journal core.TurnJournal) *Manager {
	if seed == nil {
		seed = func() string { return DefaultGreeting }
	}
	return &Manager{
		sessions: make(map[string]*Session),
		ttl:      cfg.GetSessionTTL(),
		seed:     seed,
		journal:  journal,
		now:      time.Now,
	}
}

func (m *Manager) NewID() string {
	return uuid.NewString()
}

// GetOrCreate returns the live session for id, creating it (and replaying its
// journal) when absent. An empty id gets a fresh uuid.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = m.NewID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	s := New(id, m.seed(), m.journal)
	if err := s.load(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore session %s: %w", id, err)
	}
	m.sessions[id] = s

	log.FromCtx(ctx).Debug().Str("session", id).Int("turns", s.conv.Len()).Msg("session created")
	return s, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Reset replaces the conversation with the seed. It fails with ErrBusy while
// a cycle is running.
func (m *Manager) Reset(ctx context.Context, id string) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	release, err := s.Begin()
	if err != nil {
		return err
	}
	defer release()
	s.Reset(ctx)
	return nil
}

// Destroy ends a session and drops its journal.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}

	if m.journal != nil {
		if err := m.journal.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("failed to delete journal for %s: %w", id, err)
		}
	}
	log.FromCtx(ctx).Debug().Str("session", id).Msg("session destroyed")
	return nil
}

// Expire destroys sessions idle for longer than the ttl. Sessions with a
// running request are skipped.
func (m *Manager) Expire(ctx context.Context) int {
	deadline := m.now().Add(-m.ttl)

	m.mu.Lock()
	var idle []string
	for id, s := range m.sessions {
		if !s.LastSeen().Before(deadline) {
			continue
		}
		if !s.busy.TryLock() {
			continue
		}
		s.busy.Unlock()
		idle = append(idle, id)
	}
	m.mu.Unlock()

	expired := 0
	for _, id := range idle {
		if err := m.Destroy(ctx, id); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("session", id).Msg("failed to expire session")
			continue
		}
		expired++
	}
	return expired
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
