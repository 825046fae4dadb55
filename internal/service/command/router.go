package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/sandevgo/searchbot/internal/core"
)

var _ core.CmdRouter = (*Router)(nil)

type Router struct {
	commands map[string]core.Command
}

func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	return c
}

// Execute handles input starting with "/". The bool reports whether the
// input was a command at all.
func (c *Router) Execute(ctx context.Context, sessionID, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))
	// telegram appends the bot name in groups: /reset@searchbot
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		msg := fmt.Sprintf("Unknown command: /%s", name)
		if guess := c.suggest(name); guess != "" {
			msg += fmt.Sprintf(". Did you mean /%s?", guess)
		}
		return msg, true
	}

	result, err := cmd.Execute(ctx, sessionID, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, true
}

func (c *Router) suggest(name string) string {
	if name == "" {
		return ""
	}
	names := c.names()
	matches := fuzzy.Find(name, names)
	if len(matches) > 0 {
		return matches[0].Str
	}
	// fuzzy needs the pattern as a subsequence; fall back to a shared prefix
	for _, n := range names {
		if n[0] == name[0] {
			return n
		}
	}
	return ""
}

func (c *Router) names() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListCommands returns the commands sorted by name.
func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, name := range c.names() {
		res = append(res, c.commands[name])
	}
	return res
}
