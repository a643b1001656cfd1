package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/khirotaka/weather-mcp-server/internal/config"
	"github.com/khirotaka/weather-mcp-server/internal/weather"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	noCityMessage        = "No city provided"
	missingAPIKeyMessage = "API key is missing. Please set the " + config.APIKeyEnv + " environment variable."
)

type FetchWeatherInput struct {
	// omitempty keeps city optional in the schema so an absent argument reaches the handler
	City string `json:"city,omitempty" jsonschema:"name of the city, e.g. London"`
}

// fetchWeatherHandler never returns an error to the dispatcher.
// Every failure is reported as a single text block.
func (s *MCPServer) fetchWeatherHandler(ctx context.Context, _ *mcp.CallToolRequest, input FetchWeatherInput) (*mcp.CallToolResult, any, error) {
	if input.City == "" {
		return textResult(noCityMessage), nil, nil
	}

	report, err := s.weather.Fetch(ctx, input.City)
	if err != nil {
		slog.Warn("Failed to fetch weather", "city", input.City, "error", err)
		return textResult(weatherErrorMessage(err)), nil, nil
	}

	jsonText, err := weather.FormatJSON(report)
	if err != nil {
		return textResult(weatherErrorMessage(err)), nil, nil
	}
	summary, err := weather.Summary(report)
	if err != nil {
		slog.Warn("Unexpected weather payload", "city", input.City, "error", err)
		return textResult(weatherErrorMessage(err)), nil, nil
	}

	slog.Debug("Fetched weather", "city", input.City, "name", report.Name)
	return textResult(jsonText, summary), nil, nil
}

func weatherErrorMessage(err error) string {
	var statusErr *weather.StatusError
	switch {
	case errors.Is(err, weather.ErrAPIKeyMissing):
		return missingAPIKeyMessage
	case errors.As(err, &statusErr):
		return fmt.Sprintf("Failed to fetch weather data: %d %s", statusErr.StatusCode, statusErr.StatusText)
	default:
		return "Error fetching weather data: " + err.Error()
	}
}
