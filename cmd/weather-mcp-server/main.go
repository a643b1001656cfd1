package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khirotaka/weather-mcp-server/internal/config"
	"github.com/khirotaka/weather-mcp-server/internal/http"
	"github.com/khirotaka/weather-mcp-server/internal/mcp"
	"github.com/khirotaka/weather-mcp-server/internal/server"
	"github.com/khirotaka/weather-mcp-server/internal/telemetry"
	"github.com/khirotaka/weather-mcp-server/internal/weather"
)

func main() {
	// Setup logger
	setupLogger()

	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	slog.Info("Loading configuration", "path", configPath)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Error("Failed to flush traces", "error", err)
		}
	}()

	if cfg.Weather.APIKey == "" {
		slog.Warn("Weather API key is not set; fetch-weather will report it", "env", config.APIKeyEnv)
	}

	weatherClient := weather.NewClient(
		cfg.Weather.APIURL,
		cfg.Weather.APIKey,
		weather.WithTimeout(time.Duration(cfg.Weather.Timeout)*time.Millisecond),
	)

	mcpServer := server.NewMCPServer(cfg.Server, weatherClient)
	mcpServer.Setup()

	if cfg.HTTP.Enabled {
		stopBridge, err := startBridge(ctx, cfg, mcpServer)
		if err != nil {
			return err
		}
		defer stopBridge()
	}

	slog.Info("Serving MCP over stdio", "name", cfg.Server.Name, "version", cfg.Server.Version)
	if err := mcpServer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to run server: %w", err)
	}

	slog.Info("Server exited")
	return nil
}

// startBridge exposes the tools over REST next to the stdio transport.
// The returned func shuts the listener down and closes the bridged session.
func startBridge(ctx context.Context, cfg *config.Config, mcpServer *server.MCPServer) (func(), error) {
	statuses := mcp.NewStatusRegistry()
	clientManager := mcp.NewClientManager(statuses)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := clientManager.Initialize(connectCtx, cfg.Server.Name, mcpServer); err != nil {
		return nil, fmt.Errorf("failed to initialize REST bridge: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := http.NewHandler(clientManager, statuses, time.Duration(cfg.HTTP.CallTimeout)*time.Millisecond)
	router := http.SetupRouter(handler)
	serverManager := http.NewServerManager(router, cfg.HTTP.Port)

	go func() {
		if err := serverManager.Start(); err != nil {
			// stdio keeps serving; only the bridge is lost
			slog.Error("REST bridge failed", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := serverManager.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown REST bridge", "error", err)
		}
		if err := clientManager.Close(); err != nil {
			slog.Error("Error closing bridge session", "error", err)
		}
	}, nil
}

// setupLogger writes JSON logs to stderr; stdout belongs to the stdio transport
func setupLogger() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if os.Getenv("LOG_LEVEL") == "DEBUG" {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, opts))
	slog.SetDefault(logger)
}
