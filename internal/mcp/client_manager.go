package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mcpErrors "github.com/khirotaka/weather-mcp-server/pkg/errors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServerConnector accepts a new server-side session on a transport.
// *server.MCPServer implements it.
type ServerConnector interface {
	Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error)
}

// ClientManager owns an in-process client session to the tool server.
// The REST bridge calls tools through it.
type ClientManager struct {
	name       string
	session    *mcp.ClientSession
	statuses   *StatusRegistry
	toolsCache map[string]ToolInfo
	closing    bool
	mu         sync.RWMutex
}

// ToolInfo represents cached tool information
type ToolInfo struct {
	Name         string `json:"name"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description"`
	InputSchema  any    `json:"inputSchema"`
	OutputSchema any    `json:"outputSchema,omitempty"`
}

// NewClientManager creates a new ClientManager
func NewClientManager(statuses *StatusRegistry) *ClientManager {
	return &ClientManager{
		statuses:   statuses,
		toolsCache: make(map[string]ToolInfo),
	}
}

// Initialize connects to srv over in-memory transports and caches its tools
func (m *ClientManager) Initialize(ctx context.Context, name string, srv ServerConnector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return fmt.Errorf("client manager for %s is already initialized", m.name)
	}

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.Connect(ctx, serverTransport)
	if err != nil {
		return fmt.Errorf("failed to start server session: %w", err)
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    name + "-bridge",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		if err := serverSession.Close(); err != nil {
			slog.Warn("Failed to close server session during cleanup", "server", name, "error", err)
		}
		return fmt.Errorf("failed to connect: %w", err)
	}

	if err := m.cacheTools(ctx, session); err != nil {
		if err := session.Close(); err != nil {
			slog.Warn("Failed to close session during cleanup", "server", name, "error", err)
		}
		m.statuses.SetStatus(name, StatusUnavailable)
		return fmt.Errorf("failed to cache tools: %w", err)
	}

	m.name = name
	m.session = session
	m.closing = false
	m.statuses.SetStatus(name, StatusAvailable)

	go m.monitor(name, session)

	return nil
}

// monitor blocks until the session ends and records why
func (m *ClientManager) monitor(name string, session *mcp.ClientSession) {
	m.recordExit(name, session.Wait())
}

// recordExit marks an unexpected disconnect as crashed. A session that was
// closed on purpose, or is no longer available, stays unavailable.
func (m *ClientManager) recordExit(name string, err error) {
	m.mu.RLock()
	closing := m.closing
	m.mu.RUnlock()

	if err != nil && !closing {
		if m.statuses.CompareAndSwapStatus(name, StatusAvailable, StatusCrashed) {
			slog.Error("MCP bridge session disconnected", "server", name, "error", err)
		}
		return
	}
	slog.Info("MCP bridge session closed", "server", name)
	m.statuses.SetStatus(name, StatusUnavailable)
}

func (m *ClientManager) cacheTools(ctx context.Context, session *mcp.ClientSession) error {
	result, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return err
	}

	for _, tool := range result.Tools {
		m.toolsCache[tool.Name] = ToolInfo{
			Name:         tool.Name,
			Title:        tool.Title,
			Description:  tool.Description,
			InputSchema:  tool.InputSchema,
			OutputSchema: tool.OutputSchema,
		}
	}
	return nil
}

// CallTool calls a tool on the bridged session
func (m *ClientManager) CallTool(ctx context.Context, toolName string, input any) (any, error) {
	m.mu.RLock()
	session := m.session
	name := m.name
	_, known := m.toolsCache[toolName]
	m.mu.RUnlock()

	if session == nil {
		return nil, mcpErrors.ErrSessionNotConnected
	}

	if status := m.statuses.GetStatus(name); status != StatusAvailable {
		return nil, mcpErrors.ErrSessionNotRunning
	}

	if !known {
		return nil, fmt.Errorf("%w: %s", mcpErrors.ErrToolNotFound, toolName)
	}

	inputMap, ok := input.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("input must be a map, got %T", input)
	}

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      toolName,
		Arguments: inputMap,
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetTools returns the list of all available tools
func (m *ClientManager) GetTools() []ToolInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tools := make([]ToolInfo, 0, len(m.toolsCache))
	for _, tool := range m.toolsCache {
		tools = append(tools, tool)
	}
	return tools
}

// Ping checks that the bridged session still answers
func (m *ClientManager) Ping(ctx context.Context) error {
	m.mu.RLock()
	session := m.session
	m.mu.RUnlock()

	if session == nil {
		return mcpErrors.ErrSessionNotConnected
	}
	return session.Ping(ctx, &mcp.PingParams{})
}

// Close closes the bridged session
func (m *ClientManager) Close() error {
	m.mu.Lock()
	session := m.session
	name := m.name
	m.session = nil
	m.closing = true
	m.mu.Unlock()

	if session == nil {
		return nil
	}
	m.statuses.SetStatus(name, StatusUnavailable)
	if err := session.Close(); err != nil {
		return fmt.Errorf("failed to close session %s: %w", name, err)
	}
	return nil
}
