package session

import (
	"sync"

	"github.com/sandevgo/searchbot/internal/core"
)

const DefaultGreeting = "Hi 👋 I'm a chatbot that can search Arxiv, Wikipedia, and the web!"

// Turn is one role-tagged message of a conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Conversation is an append-only list of turns that always starts with the
// seed assistant turn. Reset is the only way to drop turns.
type Conversation struct {
	mu    sync.RWMutex
	seed  string
	turns []Turn
}

func NewConversation(seed string) *Conversation {
	if seed == "" {
		seed = DefaultGreeting
	}
	return &Conversation{
		seed:  seed,
		turns: []Turn{{Role: core.RoleAssistant, Text: seed}},
	}
}

func (c *Conversation) Append(role, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

// Reset replaces every turn with the seed greeting.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = []Turn{{Role: core.RoleAssistant, Text: c.seed}}
}

// Turns returns a copy in display order.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

func (c *Conversation) Seed() string {
	return c.seed
}

// restore swaps in journaled turns. The first turn must be an assistant turn;
// anything else falls back to the seed.
func (c *Conversation) restore(turns []Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(turns) == 0 || turns[0].Role != core.RoleAssistant {
		c.turns = []Turn{{Role: core.RoleAssistant, Text: c.seed}}
		return
	}
	c.turns = append([]Turn(nil), turns...)
}
