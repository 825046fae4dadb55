package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/sandevgo/searchbot/internal/config"
	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/internal/providers/llm"
	"github.com/sandevgo/searchbot/internal/providers/mcp"
	"github.com/sandevgo/searchbot/internal/providers/search"
	"github.com/sandevgo/searchbot/internal/service/agent"
	"github.com/sandevgo/searchbot/internal/service/command"
	"github.com/sandevgo/searchbot/internal/service/prompt"
	"github.com/sandevgo/searchbot/internal/service/session"
	"github.com/sandevgo/searchbot/internal/storage/sqlite"
	"github.com/sandevgo/searchbot/internal/transport/telegram"
	"github.com/sandevgo/searchbot/internal/transport/web"
	"github.com/sandevgo/searchbot/pkg/log"
	"github.com/sandevgo/searchbot/pkg/srv"
	"github.com/sandevgo/searchbot/pkg/tokens"
)

const janitorInterval = time.Minute

// Core is everything a transport needs. Services holds the support
// services (storage cleanup, prompt watcher, janitor, MCP clients) in start order.
type Core struct {
	Config   *config.AppConfig
	Sessions *session.Manager
	Runner   agent.Runner
	Router   *command.Router
	Services []srv.Service
}

func NewCore(ctx context.Context) *Core {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// 1. Configuration
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}
	appCfg := config.NewAppConfig(ctx)

	if err := os.MkdirAll(appCfg.GetRuntimePath(), 0755); err != nil {
		logger.Fatal().Err(err).Msg("failed to create runtime directory")
	}

	// 2. Prompts
	prompts, err := prompt.NewStore(appCfg.GetPromptsPath())
	if err != nil {
		logger.Warn().Err(err).Str("path", appCfg.GetPromptsPath()).Msg("using default prompts")
	}
	services = append(services, prompt.NewWatcher(prompts))

	// 3. Storage
	journal, cleanup, err := initJournal(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	if cleanup != nil {
		services = append(services, cleanup)
	}

	// 4. Sessions
	sessions := session.NewManager(appCfg, prompts.Greeting, journal)
	services = append(services, session.NewJanitor(sessions, janitorInterval))

	// 5. Lookups & tools
	lookups := newLookups(appCfg)

	tools := mcp.NewManager(appCfg.GetMCPConfigPath())
	mcp.RegisterLookups(tools, lookups, appCfg.GetSnippetMaxChars())
	services = append(services, tools)

	// 6. Runner
	providers := llm.NewFactory(appCfg)
	counter := tokens.NewCounter()

	var runner agent.Runner
	switch appCfg.Runner {
	case config.RunnerAgent:
		runner = agent.NewToolAgent(appCfg, providers, tools, prompts, counter)
	default:
		runner = agent.NewOrchestrator(appCfg, providers, lookups, prompts, counter)
	}
	logger.Debug().Str("runner", appCfg.Runner).Str("store", appCfg.Store).Msg("core initialized")

	return &Core{
		Config:   appCfg,
		Sessions: sessions,
		Runner:   runner,
		Router:   command.NewRouter(appCfg, sessions, tools),
		Services: services,
	}
}

func newLookups(cfg *config.AppConfig) map[core.ToolID]core.Lookup {
	return search.NewLookups(search.Config{
		Timeout:     cfg.SearchTimeout,
		MaxRetries:  cfg.SearchMaxRetries,
		DocMaxChars: cfg.DocMaxChars,
		WikiLang:    cfg.WikiLang,
	})
}

func initJournal(ctx context.Context, cfg *config.AppConfig) (core.TurnJournal, srv.Service, error) {
	if cfg.Store != config.StoreSQLite {
		return nil, nil, nil
	}
	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewTurnsRepo(db), srv.NewCleanup("db", db.Close), nil
}

// NewServices adds the enabled transports to the core services.
func NewServices(ctx context.Context, c *Core) []srv.Service {
	logger := log.FromCtx(ctx)
	services := append([]srv.Service(nil), c.Services...)

	transports, err := initTransports(ctx, c)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	if len(transports) == 0 {
		logger.Warn().Msg("no transport enabled, set SEARCHBOT_ENABLE_WEB or SEARCHBOT_ENABLE_TELEGRAM")
	}
	return append(services, transports...)
}

func initTransports(ctx context.Context, c *Core) ([]srv.Service, error) {
	var services []srv.Service
	cfg := c.Config

	if cfg.EnableWeb {
		opts := web.Options{Addr: cfg.WebAddr}
		if cfg.WebSharedKey {
			opts.SharedKey = cfg.GetServerAPIKey()
		}
		server, err := web.NewServer(opts, c.Runner, c.Sessions)
		if err != nil {
			return nil, err
		}
		services = append(services, server)
	}

	if cfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, cfg.GetServerAPIKey(), c.Runner, c.Sessions, c.Router)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
