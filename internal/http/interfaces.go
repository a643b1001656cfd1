package http

import (
	"context"

	"github.com/khirotaka/weather-mcp-server/internal/mcp"
)

// ClientManagerInterface defines the interface for the bridged MCP session.
// This interface is used for dependency injection in tests.
type ClientManagerInterface interface {
	CallTool(ctx context.Context, toolName string, input any) (any, error)
	GetTools() []mcp.ToolInfo
	Ping(ctx context.Context) error
	Close() error
}

// StatusRegistryInterface defines the interface for session status lookup.
// This interface is used for dependency injection in tests.
type StatusRegistryInterface interface {
	GetAllStatuses() map[string]mcp.SessionStatus
}
