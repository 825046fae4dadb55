package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/searchbot/internal/core"
)

type ttlConfig time.Duration

func (c ttlConfig) GetSessionTTL() time.Duration { return time.Duration(c) }

type memJournal struct {
	mu      sync.Mutex
	turns   map[string][]core.StoredTurn
	failAdd bool
}

func newMemJournal() *memJournal {
	return &memJournal{turns: make(map[string][]core.StoredTurn)}
}

func (j *memJournal) AppendTurn(ctx context.Context, sessionID, role, content string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failAdd {
		return errors.New("disk full")
	}
	j.turns[sessionID] = append(j.turns[sessionID], core.StoredTurn{SessionID: sessionID, Role: role, Content: content})
	return nil
}

func (j *memJournal) LoadTurns(ctx context.Context, sessionID string) ([]core.StoredTurn, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]core.StoredTurn(nil), j.turns[sessionID]...), nil
}

func (j *memJournal) ResetTurns(ctx context.Context, sessionID, seedRole, seedContent string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.turns[sessionID] = []core.StoredTurn{{SessionID: sessionID, Role: seedRole, Content: seedContent}}
	return nil
}

func (j *memJournal) DeleteSession(ctx context.Context, sessionID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.turns, sessionID)
	return nil
}

func TestConversation_StartsWithSeed(t *testing.T) {
	c := NewConversation("")
	turns := c.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, Turn{Role: core.RoleAssistant, Text: DefaultGreeting}, turns[0])
}

func TestConversation_AppendOnly(t *testing.T) {
	c := NewConversation("hello")
	c.Append(core.RoleUser, "q1")
	c.Append(core.RoleAssistant, "a1")
	before := c.Turns()

	c.Append(core.RoleUser, "q2")
	c.Append(core.RoleAssistant, "a2")
	after := c.Turns()

	require.Len(t, after, len(before)+2)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, Turn{Role: core.RoleUser, Text: "q2"}, after[3])
	assert.Equal(t, Turn{Role: core.RoleAssistant, Text: "a2"}, after[4])
}

func TestConversation_TurnsIsACopy(t *testing.T) {
	c := NewConversation("hello")
	turns := c.Turns()
	turns[0].Text = "mutated"
	assert.Equal(t, "hello", c.Turns()[0].Text)
}

func TestConversation_Reset(t *testing.T) {
	c := NewConversation("hello")
	for i := 0; i < 5; i++ {
		c.Append(core.RoleUser, "q")
		c.Append(core.RoleAssistant, "a")
	}

	c.Reset()
	assert.Equal(t, []Turn{{Role: core.RoleAssistant, Text: "hello"}}, c.Turns())

	c.Reset()
	assert.Equal(t, 1, c.Len())
}

func TestSession_BeginIsExclusive(t *testing.T) {
	s := New("s1", "", nil)

	release, err := s.Begin()
	require.NoError(t, err)

	_, err = s.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	release()
	release2, err := s.Begin()
	require.NoError(t, err)
	release2()
}

func TestSession_JournalMirrorsAppendAndReset(t *testing.T) {
	ctx := context.Background()
	j := newMemJournal()
	s := New("s1", "seed", j)
	require.NoError(t, s.load(ctx))

	s.AppendTurn(ctx, core.RoleUser, "q")
	s.AppendTurn(ctx, core.RoleAssistant, "a")

	stored, _ := j.LoadTurns(ctx, "s1")
	require.Len(t, stored, 3)
	assert.Equal(t, "seed", stored[0].Content)
	assert.Equal(t, "a", stored[2].Content)

	s.Reset(ctx)
	stored, _ = j.LoadTurns(ctx, "s1")
	require.Len(t, stored, 1)
	assert.Equal(t, core.RoleAssistant, stored[0].Role)
}

func TestSession_JournalFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	j := newMemJournal()
	j.failAdd = true
	s := New("s1", "seed", j)

	s.AppendTurn(ctx, core.RoleUser, "q")
	assert.Equal(t, 2, s.Conversation().Len())
}

func TestManager_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ttlConfig(time.Hour), func() string { return "greet" }, nil)

	s, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "greet", s.Turns()[0].Text)

	again, err := m.GetOrCreate(ctx, s.ID)
	require.NoError(t, err)
	assert.Same(t, s, again)

	other, err := m.GetOrCreate(ctx, "")
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, m.Len())
}

func TestManager_ResetAndDestroy(t *testing.T) {
	ctx := context.Background()
	j := newMemJournal()
	m := NewManager(ttlConfig(time.Hour), nil, j)

	s, err := m.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	s.AppendTurn(ctx, core.RoleUser, "q")

	require.NoError(t, m.Reset(ctx, "abc"))
	assert.Equal(t, 1, s.Conversation().Len())

	require.NoError(t, m.Destroy(ctx, "abc"))
	_, err = m.Get("abc")
	assert.ErrorIs(t, err, ErrNotFound)

	stored, _ := j.LoadTurns(ctx, "abc")
	assert.Empty(t, stored)

	assert.ErrorIs(t, m.Destroy(ctx, "abc"), ErrNotFound)
	assert.ErrorIs(t, m.Reset(ctx, "abc"), ErrNotFound)
}

func TestManager_ResetRefusedWhileBusy(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ttlConfig(time.Hour), nil, nil)

	s, err := m.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	s.AppendTurn(ctx, core.RoleUser, "q")

	release, err := s.Begin()
	require.NoError(t, err)

	assert.ErrorIs(t, m.Reset(ctx, "abc"), ErrBusy)
	assert.Equal(t, 2, s.Conversation().Len())

	release()
	require.NoError(t, m.Reset(ctx, "abc"))
	assert.Equal(t, 1, s.Conversation().Len())
}

func TestManager_RestoresFromJournal(t *testing.T) {
	ctx := context.Background()
	j := newMemJournal()

	first := NewManager(ttlConfig(time.Hour), nil, j)
	s, err := first.GetOrCreate(ctx, "keep")
	require.NoError(t, err)
	s.AppendTurn(ctx, core.RoleUser, "q")
	s.AppendTurn(ctx, core.RoleAssistant, "a")

	second := NewManager(ttlConfig(time.Hour), nil, j)
	restored, err := second.GetOrCreate(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, s.Turns(), restored.Turns())

	fresh, err := second.GetOrCreate(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Conversation().Len())
}

func TestManager_Expire(t *testing.T) {
	ctx := context.Background()
	m := NewManager(ttlConfig(time.Minute), nil, nil)

	_, _ = m.GetOrCreate(ctx, "idle")
	busy, _ := m.GetOrCreate(ctx, "busy")
	_, _ = m.GetOrCreate(ctx, "fresh")

	release, err := busy.Begin()
	require.NoError(t, err)
	defer release()

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	// fresh is idle too once the clock moves; only busy survives.
	assert.Equal(t, 2, m.Expire(ctx))
	_, err = m.Get("busy")
	assert.NoError(t, err)
	_, err = m.Get("idle")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJanitor_StopsOnShutdown(t *testing.T) {
	m := NewManager(ttlConfig(time.Minute), nil, nil)
	j := NewJanitor(m, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- j.Start(context.Background()) }()

	require.NoError(t, j.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
