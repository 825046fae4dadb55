package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/pkg/log"
)

const baseContextKey = "base_context"

type Sessions interface {
	GetOrCreate(ctx context.Context, id string) (*session.Session, error)
}

// Bot answers the owner's messages; each chat is its own session.
type Bot struct {
	bot      *tele.Bot
	sender   *sender
	runner   agent.Runner
	sessions Sessions
	router   core.CmdRouter
	apiKey   string
	ownerID  int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	apiKey string,
	runner agent.Runner,
	sessions Sessions,
	router core.CmdRouter,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		sender:   newSender(b),
		runner:   runner,
		sessions: sessions,
		router:   router,
		apiKey:   apiKey,
		ownerID:  cfg.OwnerID,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func sessionID(chatID int64) string {
	return fmt.Sprintf("telegram-%d", chatID)
}

func (b *Bot) session(ctx context.Context, chatID int64) (*session.Session, error) {
	s, err := b.sessions.GetOrCreate(ctx, sessionID(chatID))
	if err != nil {
		return nil, err
	}
	if s.APIKey() == "" {
		s.SetAPIKey(b.apiKey)
	}
	return s, nil
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	s, err := b.session(ctx, c.Chat().ID)
	if err != nil {
		return c.Send(fmt.Sprintf("error: %v", err))
	}
	return b.sender.sendMarkdown(ctx, c.Chat(), s.Conversation().Seed(), false)
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	chat := c.Chat()

	s, err := b.session(ctx, chat.ID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open session")
		return c.Send(fmt.Sprintf("error: %v", err))
	}

	if reply, ok := b.router.Execute(ctx, s.ID, c.Text()); ok {
		return b.sender.sendMarkdown(ctx, chat, reply, false)
	}

	_ = c.Notify(tele.Typing)

	_, err = b.runner.Run(ctx, s, c.Text(), func(ev agent.Event) {
		switch ev.Kind {
		case agent.EventToolStart:
			_ = b.sender.sendPlain(ctx, chat, "🔎 "+ev.Text, true)
			_ = c.Notify(tele.Typing)
		case agent.EventAnswer:
			if err := b.sender.sendMarkdown(ctx, chat, ev.Text, false); err != nil {
				logger.Error().Err(err).Msg("failed to send answer")
			}
		}
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrBusy):
		return c.Send("⏳ Still working on your previous question.")
	case errors.Is(err, agent.ErrMissingCredential):
		return c.Send("🔑 No completion API key is configured for this bot.")
	default:
		logger.Error().Err(err).Msg("cycle failed")
		return c.Send(fmt.Sprintf("error: %v", err))
	}
}
