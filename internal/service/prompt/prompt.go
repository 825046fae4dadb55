package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

const (
	DefaultSystem = "You are a helpful assistant. Answer the user's question. " +
		"If you would need to look something up, say where: a research paper on arxiv, " +
		"an article on wikipedia, or a web search."

	DefaultGreeting = "Hi 👋 I'm a chatbot that can search Arxiv, Wikipedia, and the web!"

	DefaultSynthesis = "Answer the question using the search results below. " +
		"If a result is an error, ignore it.\n\n" +
		"Question: {{query}}\n\n" +
		"Search results:\n{{results}}"

	DefaultAgent = "You are a research assistant with access to search tools. " +
		"Use arxiv for scientific papers, wikipedia for encyclopedic facts, and search for " +
		"anything else. Call at most the tools you need, then answer concisely."
)

// Prompts is the content of prompts.toml.
type Prompts struct {
	System    string `toml:"system"`
	Greeting  string `toml:"greeting"`
	Synthesis string `toml:"synthesis"`
	Agent     string `toml:"agent"`
}

// Defaults returns the built-in prompts.
func Defaults() Prompts {
	return Prompts{
		System:    DefaultSystem,
		Greeting:  DefaultGreeting,
		Synthesis: DefaultSynthesis,
		Agent:     DefaultAgent,
	}
}

// withDefaults fills every blank field from the built-in prompts.
func (p Prompts) withDefaults() Prompts {
	d := Defaults()
	if strings.TrimSpace(p.System) == "" {
		p.System = d.System
	}
	if strings.TrimSpace(p.Greeting) == "" {
		p.Greeting = d.Greeting
	}
	if strings.TrimSpace(p.Synthesis) == "" {
		p.Synthesis = d.Synthesis
	}
	if strings.TrimSpace(p.Agent) == "" {
		p.Agent = d.Agent
	}
	return p
}

// Render substitutes {{query}} and {{results}} in the synthesis template.
func (p Prompts) Render(query, results string) string {
	r := strings.NewReplacer("{{query}}", query, "{{results}}", results)
	return r.Replace(p.Synthesis)
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (Prompts, error) {
	if path == "" {
		return Defaults(), nil
	}

	var p Prompts
	if _, err := toml.DecodeFile(path, &p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("failed to decode prompts: %w", err)
	}
	return p.withDefaults(), nil
}

// Save writes p as TOML, used by the installer to seed an editable file.
func Save(path string, p Prompts) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create prompts file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(p); err != nil {
		return fmt.Errorf("failed to encode prompts: %w", err)
	}
	return nil
}

// Store holds the current prompts and is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Prompts
}

func NewStore(path string) (*Store, error) {
	p, err := Load(path)
	s := &Store{path: path, cur: p}
	return s, err
}

func (s *Store) Get() Prompts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Greeting is the seed assistant turn for new conversations.
func (s *Store) Greeting() string {
	return s.Get().Greeting
}

// Reload re-reads the file. On error the previous prompts stay in place.
func (s *Store) Reload() error {
	p, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = p
	s.mu.Unlock()
	return nil
}

func (s *Store) Path() string {
	return s.path
}
