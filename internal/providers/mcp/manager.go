package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sourcegraph/conc"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/log"
)

type Timeouts struct {
	Connect  time.Duration
	ToolList time.Duration
	ToolCall time.Duration
}

func NewDefaultTimeouts() *Timeouts {
	return &Timeouts{
		Connect:  30 * time.Second,
		ToolList: 5 * time.Second,
		ToolCall: 2 * time.Minute,
	}
}

// NativeHandler is an in-process tool.
type NativeHandler func(ctx context.Context, args json.RawMessage) (string, error)

type connector func(ctx context.Context, cfg ServerConfig) (*client.Client, error)

var _ core.ToolServer = (*Manager)(nil)

// Manager exposes native tools plus the tools of every external server in
// mcp_config.json as one function-tool catalog. It is also a srv.Service:
// Start dials servers, Shutdown closes them.
type Manager struct {
	mu         sync.RWMutex
	configPath string
	timeouts   *Timeouts
	connect    connector

	clients      map[string]*client.Client
	toolToClient map[string]*client.Client

	cachedTools []core.Tool
	cacheValid  bool

	nativeTools    map[string]NativeHandler
	nativeToolDefs []core.Tool
}

// NewManager builds a manager. An empty configPath disables external servers.
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath:   configPath,
		timeouts:     NewDefaultTimeouts(),
		connect:      Connect,
		clients:      make(map[string]*client.Client),
		toolToClient: make(map[string]*client.Client),
		nativeTools:  make(map[string]NativeHandler),
	}
}

// RegisterNativeTool adds a Go function as a tool. Later registrations with
// the same name replace earlier ones.
func (m *Manager) RegisterNativeTool(name, description string, schema json.RawMessage, handler NativeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	def := core.Tool{
		Type: "function",
		Function: core.Function{
			Name:        name,
			Description: description,
			Parameters:  schema,
		},
	}
	if _, exists := m.nativeTools[name]; exists {
		for i, t := range m.nativeToolDefs {
			if t.Function.Name == name {
				m.nativeToolDefs[i] = def
			}
		}
	} else {
		m.nativeToolDefs = append(m.nativeToolDefs, def)
	}
	m.nativeTools[name] = handler
	m.cacheValid = false
}

func (m *Manager) Start(ctx context.Context) error {
	if m.configPath == "" {
		return nil
	}

	cfg, err := LoadConfig(ctx, m.configPath)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.MCPServers))
	for name := range cfg.MCPServers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		logger := log.FromCtx(ctx).With().Str("server", name).Logger()
		logger.Info().Msg("starting mcp connection")

		cCtx, cancel := context.WithTimeout(ctx, m.timeouts.Connect)
		cli, err := m.connect(cCtx, cfg.MCPServers[name])
		cancel()
		if err != nil {
			// one broken server must not take the lookups down with it
			logger.Error().Err(err).Msg("failed to connect mcp server")
			continue
		}

		m.mu.Lock()
		m.clients[name] = cli
		m.cacheValid = false
		m.mu.Unlock()
	}
	return nil
}

func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, cli := range m.clients {
		if err := cli.Close(); err != nil {
			log.FromCtx(ctx).Error().Err(err).Str("server", name).Msg("failed to close client")
		}
	}
	m.clients = make(map[string]*client.Client)
	m.toolToClient = make(map[string]*client.Client)
	m.cacheValid = false
	return nil
}

func (m *Manager) GetTools(ctx context.Context) ([]core.Tool, error) {
	m.mu.RLock()
	if m.cacheValid {
		tools := append([]core.Tool(nil), m.cachedTools...)
		m.mu.RUnlock()
		return tools, nil
	}
	allTools := append([]core.Tool(nil), m.nativeToolDefs...)
	nativeNames := make(map[string]struct{}, len(m.nativeTools))
	for name := range m.nativeTools {
		nativeNames[name] = struct{}{}
	}
	clients := make(map[string]*client.Client, len(m.clients))
	for k, v := range m.clients {
		clients[k] = v
	}
	m.mu.RUnlock()

	type listing struct {
		server string
		tools  []mcpproto.Tool
	}

	var (
		wg       conc.WaitGroup
		resMu    sync.Mutex
		listings []listing
	)
	for name, cli := range clients {
		wg.Go(func() {
			tCtx, cancel := context.WithTimeout(ctx, m.timeouts.ToolList)
			defer cancel()

			resp, err := cli.ListTools(tCtx, mcpproto.ListToolsRequest{})
			if err != nil {
				log.FromCtx(ctx).Error().Err(err).Str("server", name).Msg("failed to list tools")
				return
			}
			resMu.Lock()
			listings = append(listings, listing{server: name, tools: resp.Tools})
			resMu.Unlock()
		})
	}
	wg.Wait()

	sort.Slice(listings, func(i, j int) bool { return listings[i].server < listings[j].server })

	routing := make(map[string]*client.Client)
	for _, l := range listings {
		for _, t := range l.tools {
			if _, native := nativeNames[t.Name]; native {
				continue
			}
			if _, taken := routing[t.Name]; taken {
				continue
			}
			routing[t.Name] = clients[l.server]

			schema, _ := json.Marshal(t.InputSchema)
			allTools = append(allTools, core.Tool{
				Type: "function",
				Function: core.Function{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  schema,
				},
			})
		}
	}

	m.mu.Lock()
	m.cachedTools = allTools
	m.toolToClient = routing
	m.cacheValid = true
	m.mu.Unlock()

	return append([]core.Tool(nil), allTools...), nil
}

func (m *Manager) CallTool(ctx context.Context, name string, args string) (string, error) {
	log.FromCtx(ctx).Debug().Str("tool", name).Str("args", args).Msg("executing tool")

	m.mu.RLock()
	handler, native := m.nativeTools[name]
	cli, external := m.toolToClient[name]
	m.mu.RUnlock()

	if native {
		return handler(ctx, json.RawMessage(args))
	}
	if !external {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	var argsMap map[string]any
	if strings.TrimSpace(args) != "" {
		if err := json.Unmarshal([]byte(args), &argsMap); err != nil {
			return "", fmt.Errorf("invalid json arguments: %w", err)
		}
	}

	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = argsMap

	tCtx, cancel := context.WithTimeout(ctx, m.timeouts.ToolCall)
	defer cancel()

	res, err := cli.CallTool(tCtx, req)
	if err != nil {
		return "", err
	}

	output := textContent(res.Content)
	if res.IsError {
		if output == "" {
			output = "tool execution failed"
		}
		return "", errors.New(output)
	}
	return output, nil
}

func textContent(contents []mcpproto.Content) string {
	var b strings.Builder
	for _, content := range contents {
		switch c := content.(type) {
		case mcpproto.TextContent:
			b.WriteString(c.Text)
			b.WriteString("\n")
		case *mcpproto.TextContent:
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
