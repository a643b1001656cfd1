package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// DefaultAPIURL is the OpenWeatherMap current weather endpoint.
const DefaultAPIURL = "https://api.openweathermap.org/data/2.5/weather"

const tracerName = "github.com/khirotaka/weather-mcp-server/internal/weather"

var (
	ErrAPIKeyMissing = errors.New("API key missing")
	ErrNoConditions  = errors.New("no weather conditions in response")
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("weather API returned %d %s", e.StatusCode, e.StatusText)
}

// Client fetches current weather by city name. It is immutable after
// construction and safe for concurrent use.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout bounds each upstream call. Zero leaves the call unbounded.
// It applies to the client from WithHTTPClient regardless of option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a client for apiURL. An empty apiURL falls back to DefaultAPIURL.
func NewClient(apiURL, apiKey string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	c := &Client{
		apiURL:     apiURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		httpClient := *c.httpClient
		httpClient.Timeout = c.timeout
		c.httpClient = &httpClient
	}
	return c
}

// HasAPIKey reports whether a credential is configured.
func (c *Client) HasAPIKey() bool {
	return c.apiKey != ""
}

// Fetch issues a single GET for city. No retry is attempted.
func (c *Client) Fetch(ctx context.Context, city string) (*Report, error) {
	if !c.HasAPIKey() {
		return nil, ErrAPIKeyMissing
	}

	ctx, span := c.tracer.Start(ctx, "fetch-weather",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("weather.city", city)),
	)
	defer span.End()

	report, err := c.fetch(ctx, span, city)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return report, nil
}

func (c *Client) fetch(ctx context.Context, span trace.Span, city string) (*Report, error) {
	address, err := c.requestURL(city)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, including appid
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
		}
	}

	var report Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &report, nil
}

func (c *Client) requestURL(city string) (string, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid weather API URL: %w", err)
	}
	q := u.Query()
	q.Set("q", city)
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// statusText returns the reason phrase from resp.Status ("404 Not Found" -> "Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
