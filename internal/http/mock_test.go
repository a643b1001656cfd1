package http

import (
	"context"
	"maps"

	"github.com/khirotaka/weather-mcp-server/internal/mcp"
)

// mockClientManager implements ClientManagerInterface for testing.
type mockClientManager struct {
	callToolFunc func(ctx context.Context, toolName string, input any) (any, error)
	getToolsFunc func() []mcp.ToolInfo
	pingFunc     func(ctx context.Context) error
	closeFunc    func() error
}

// NewMockClientManager creates a new mock ClientManager.
func NewMockClientManager() *mockClientManager {
	return &mockClientManager{}
}

// CallTool implements ClientManagerInterface.
func (m *mockClientManager) CallTool(ctx context.Context, toolName string, input any) (any, error) {
	if m.callToolFunc != nil {
		return m.callToolFunc(ctx, toolName, input)
	}
	return nil, nil
}

// GetTools implements ClientManagerInterface.
func (m *mockClientManager) GetTools() []mcp.ToolInfo {
	if m.getToolsFunc != nil {
		return m.getToolsFunc()
	}
	return []mcp.ToolInfo{}
}

// Ping implements ClientManagerInterface.
func (m *mockClientManager) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// Close implements ClientManagerInterface.
func (m *mockClientManager) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

// OnCallTool sets the behavior for CallTool.
func (m *mockClientManager) OnCallTool(fn func(ctx context.Context, toolName string, input any) (any, error)) *mockClientManager {
	m.callToolFunc = fn
	return m
}

// OnGetTools sets the behavior for GetTools.
func (m *mockClientManager) OnGetTools(fn func() []mcp.ToolInfo) *mockClientManager {
	m.getToolsFunc = fn
	return m
}

// OnPing sets the behavior for Ping.
func (m *mockClientManager) OnPing(fn func(ctx context.Context) error) *mockClientManager {
	m.pingFunc = fn
	return m
}

// mockStatusRegistry implements StatusRegistryInterface for testing.
type mockStatusRegistry struct {
	statuses map[string]mcp.SessionStatus
}

func newMockStatusRegistry(statuses map[string]mcp.SessionStatus) *mockStatusRegistry {
	return &mockStatusRegistry{statuses: statuses}
}

// GetAllStatuses implements StatusRegistryInterface.
func (m *mockStatusRegistry) GetAllStatuses() map[string]mcp.SessionStatus {
	statuses := make(map[string]mcp.SessionStatus, len(m.statuses))
	maps.Copy(statuses, m.statuses)
	return statuses
}
