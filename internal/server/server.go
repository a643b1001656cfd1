package server

import (
	"context"

	"github.com/khirotaka/weather-mcp-server/internal/config"
	"github.com/khirotaka/weather-mcp-server/internal/weather"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// WeatherFetcher looks up the current weather for a city.
// *weather.Client implements it.
type WeatherFetcher interface {
	Fetch(ctx context.Context, city string) (*weather.Report, error)
}

type MCPServer struct {
	server  *mcp.Server
	weather WeatherFetcher
}

func NewMCPServer(cfg config.ServerConfig, fetcher WeatherFetcher) *MCPServer {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{Name: cfg.Name, Version: cfg.Version},
		nil,
	)
	return &MCPServer{
		server:  mcpServer,
		weather: fetcher,
	}
}

func (s *MCPServer) Setup() {
	mcp.AddTool(
		s.server,
		&mcp.Tool{
			Name:        "calculate-bmi",
			Title:       "BMI Calculator",
			Description: "Calculate Body Mass Index from weight in kilograms and height in meters",
		},
		s.calculateBMIHandler,
	)
	mcp.AddTool(
		s.server,
		&mcp.Tool{
			Name:        "fetch-weather",
			Title:       "Weather Fetcher",
			Description: "Get the current weather for a city",
		},
		s.fetchWeatherHandler,
	)
}

// Run serves over stdin/stdout until the client disconnects or ctx is done.
func (s *MCPServer) Run(ctx context.Context) error {
	return s.serve(ctx, &mcp.StdioTransport{})
}

func (s *MCPServer) serve(ctx context.Context, t mcp.Transport) error {
	return s.server.Run(ctx, t)
}

// Connect attaches an additional session on t, e.g. one end of mcp.NewInMemoryTransports.
func (s *MCPServer) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func textResult(texts ...string) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(texts))
	for _, text := range texts {
		content = append(content, &mcp.TextContent{Text: text})
	}
	return &mcp.CallToolResult{Content: content}
}
