package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// APIKeyEnv is the environment variable holding the OpenWeatherMap credential.
const APIKeyEnv = "OPEN_WEATHER_MAP_API_KEY"

const (
	defaultServerName  = "weather-mcp-server"
	defaultVersion     = "1.0.0"
	defaultAPIURL      = "https://api.openweathermap.org/data/2.5/weather"
	defaultPort        = "3001"
	defaultCallTimeout = 30000
)

// Config represents the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Weather WeatherConfig `yaml:"weather"`
	HTTP    HTTPConfig    `yaml:"http"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig is the implementation info advertised during MCP initialization
type ServerConfig struct {
	Name    string `yaml:"name" validate:"required,hostname_rfc1123,max=50"`
	Version string `yaml:"version" validate:"required,printascii,max=32"`
}

// WeatherConfig configures the upstream weather API
type WeatherConfig struct {
	APIURL  string `yaml:"api_url" validate:"required,url"`
	APIKey  string `yaml:"api_key"`
	Timeout int    `yaml:"timeout" validate:"min=0,max=300000"` // ms, 0 means no timeout
}

// HTTPConfig configures the optional REST bridge
type HTTPConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Port        string `yaml:"port" validate:"required,numeric,max=5"`
	CallTimeout int    `yaml:"call_timeout" validate:"min=0,max=300000"` // ms, 0 means the 30s default
}

// TracingConfig configures the optional Zipkin exporter
type TracingConfig struct {
	ZipkinURL   string `yaml:"zipkin_url" validate:"omitempty,url"`
	ServiceName string `yaml:"service_name" validate:"required,max=100"`
}

// LoadConfig loads and validates the configuration.
// An empty path skips the YAML file and uses defaults plus the environment.
func LoadConfig(path string) (*Config, error) {
	// .env があれば読み込む (既に設定済みの環境変数は上書きしない)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables
		expandedData := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyDefaults(&config)
	applyEnv(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig skips the bridge settings when the bridge is off, so a
// platform PORT meant for something else cannot stop a stdio-only server.
func validateConfig(c *Config) error {
	validate := validator.New()
	if !c.HTTP.Enabled {
		return validate.StructExcept(c, "HTTP")
	}
	return validate.Struct(c)
}

func applyDefaults(c *Config) {
	if c.Server.Name == "" {
		c.Server.Name = defaultServerName
	}
	if c.Server.Version == "" {
		c.Server.Version = defaultVersion
	}
	if c.Weather.APIURL == "" {
		c.Weather.APIURL = defaultAPIURL
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = defaultPort
	}
	if c.HTTP.CallTimeout == 0 {
		c.HTTP.CallTimeout = defaultCallTimeout
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Server.Name
	}
}

// applyEnv lets the environment fill in what the file leaves empty.
// PORT always wins so container platforms can pick the listener.
func applyEnv(c *Config) {
	if c.Weather.APIKey == "" {
		c.Weather.APIKey = os.Getenv(APIKeyEnv)
	}
	if port := os.Getenv("PORT"); port != "" {
		c.HTTP.Port = port
	}
}
