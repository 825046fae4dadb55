package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/log"
)

const (
	defaultSessionID = "cli-local"

	grey  = "\033[38;5;240m"
	red   = "\033[31m"
	reset = "\033[0m"
)

type Sessions interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
}

type Config struct {
	RuntimePath string
	APIKey      string
}

// ReadLine is the interactive terminal chat. It uses one session whose
// credential comes from configuration.
type ReadLine struct {
	cfg      Config
	runner   agent.Runner
	sessions Sessions
	router   core.CmdRouter
	rl       *readline.Instance
}

func NewReadLine(cfg Config, runner agent.Runner, sessions Sessions, router core.CmdRouter) (*ReadLine, error) {
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(cfg.RuntimePath, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		runner:   runner,
		sessions: sessions,
		router:   router,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	s, err := r.sessions.GetOrCreate(ctx, defaultSessionID)
	if err != nil {
		return err
	}
	if s.APIKey() == "" {
		s.SetAPIKey(r.cfg.APIKey)
	}

	out := r.rl.Stdout()
	printTranscript(out, s.Turns())
	logger.Debug().Msg("readline chat started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if quit := r.handle(ctx, s, line, out); quit {
			return nil
		}
	}
}

// handle processes one input line. It reports whether the user asked to quit.
func (r *ReadLine) handle(ctx context.Context, s *session.Session, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "exit", "quit":
		return true
	}

	if r.router != nil {
		if reply, ok := r.router.Execute(ctx, s.ID, line); ok {
			fmt.Fprintln(out, reply)
			return false
		}
	}

	p := &printer{out: out}
	_, err := r.runner.Run(ctx, s, line, p.event)
	p.finish()
	if err != nil {
		if !errors.Is(err, agent.ErrMissingCredential) {
			log.FromCtx(ctx).Error().Err(err).Msg("cycle failed")
		}
		fmt.Fprintf(out, "%sError: %v%s\n", red, err, reset)
		if errors.Is(err, agent.ErrMissingCredential) {
			fmt.Fprintln(out, "Set SEARCHBOT_LLM_API_KEY in your .env or run 'searchbot install'.")
		}
	}
	return false
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func printTranscript(out io.Writer, turns []session.Turn) {
	for _, t := range turns {
		if t.Role == core.RoleUser {
			fmt.Fprintf(out, ">>> %s\n", t.Text)
			continue
		}
		fmt.Fprintf(out, "%s\n\n", t.Text)
	}
}

// printer renders cycle events. Streamed fragments are printed as they come;
// the final answer is only printed when nothing was streamed.
type printer struct {
	out      io.Writer
	streamed bool
}

func (p *printer) event(ev agent.Event) {
	switch ev.Kind {
	case agent.EventStatus, agent.EventToolStart:
		fmt.Fprintf(p.out, "%s%s%s\n", grey, ev.Text, reset)
	case agent.EventToolResult:
		state := "done"
		if ev.Failed {
			state = "failed"
		}
		fmt.Fprintf(p.out, "%s  > %s %s%s\n", grey, ev.Tool, state, reset)
	case agent.EventDelta:
		p.streamed = true
		fmt.Fprint(p.out, ev.Text)
	case agent.EventAnswer:
		if !p.streamed {
			fmt.Fprint(p.out, ev.Text)
		}
		fmt.Fprintln(p.out)
	}
}

func (p *printer) finish() {
	fmt.Fprintln(p.out)
}
