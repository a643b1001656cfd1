package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/khirotaka/weather-mcp-server/internal/weather"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const londonBody = `{
  "coord": {"lon": -0.1257, "lat": 51.5085},
  "weather": [{"id": 804, "main": "Clouds", "description": "overcast clouds", "icon": "04d"}],
  "base": "stations",
  "main": {"temp": 15.2, "feels_like": 14.0, "temp_min": 13.9, "temp_max": 16.1, "pressure": 1012, "humidity": 70},
  "visibility": 10000,
  "wind": {"speed": 3.1, "deg": 200},
  "clouds": {"all": 100},
  "dt": 1700000000,
  "sys": {"country": "GB", "sunrise": 1699946400, "sunset": 1699979400},
  "timezone": 0,
  "id": 2643743,
  "name": "London",
  "cod": 200
}`

const londonSummary = "Weather for London, GB:\n" +
	"Temperature: 15.2°C (feels like 14°C)\n" +
	"Conditions: Clouds - overcast clouds\n" +
	"Humidity: 70%\n" +
	"Wind: 3.1 m/s, direction: 200°"

// spyFetcher counts calls. Every fetch fails.
type spyFetcher struct {
	calls atomic.Int32
}

func (f *spyFetcher) Fetch(ctx context.Context, city string) (*weather.Report, error) {
	f.calls.Add(1)
	return nil, fmt.Errorf("unexpected fetch for %s", city)
}

// newUpstream starts a fake weather API and counts the requests it receives.
func newUpstream(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(upstream.Close)
	return upstream, &hits
}

func TestFetchWeather_NoCity(t *testing.T) {
	fetcher := &spyFetcher{}
	session := newTestSession(t, fetcher)

	got := callTool(t, session, "fetch-weather", map[string]any{"city": ""})
	assert.Equal(t, []string{"No city provided"}, got)

	got = callTool(t, session, "fetch-weather", map[string]any{})
	assert.Equal(t, []string{"No city provided"}, got)

	assert.Equal(t, int32(0), fetcher.calls.Load())
}

func TestFetchWeather_MissingAPIKey(t *testing.T) {
	upstream, hits := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(londonBody))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, ""))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "Paris"})

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "OPEN_WEATHER_MAP_API_KEY")
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetchWeather_UpstreamNotFound(t *testing.T) {
	upstream, hits := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, "test-key"))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "Nowhere"})

	require.Len(t, got, 1)
	assert.Contains(t, got[0], "404")
	assert.Equal(t, "Failed to fetch weather data: 404 Not Found", got[0])
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetchWeather_Success(t *testing.T) {
	var gotCity, gotUnits, gotKey string
	upstream, hits := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		gotUnits = r.URL.Query().Get("units")
		gotKey = r.URL.Query().Get("appid")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(londonBody))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, "test-key"))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "London"})

	require.Len(t, got, 2)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "London", gotCity)
	assert.Equal(t, "metric", gotUnits)
	assert.Equal(t, "test-key", gotKey)

	// first block: the report re-encoded inside literal brackets
	require.True(t, strings.HasPrefix(got[0], "["))
	require.True(t, strings.HasSuffix(got[0], "]"))
	var echoed, original weather.Report
	require.NoError(t, json.Unmarshal([]byte(got[0][1:len(got[0])-1]), &echoed))
	require.NoError(t, json.Unmarshal([]byte(londonBody), &original))
	assert.Equal(t, original, echoed)

	assert.Equal(t, londonSummary, got[1])
}

func TestFetchWeather_MalformedJSON(t *testing.T) {
	upstream, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "London", "weather": [`))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, "test-key"))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "London"})

	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "Error fetching weather data: failed to decode response"), got[0])

	// the session keeps serving after a failed call
	got = callTool(t, session, "calculate-bmi", map[string]any{"weightKg": 80, "heightM": 2})
	assert.Equal(t, []string{"20"}, got)
}

func TestFetchWeather_EmptyConditions(t *testing.T) {
	upstream, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "London", "weather": [], "sys": {"country": "GB"}}`))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, "test-key"))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "London"})

	require.Len(t, got, 1)
	assert.Equal(t, "Error fetching weather data: no weather conditions in response", got[0])
}

func TestFetchWeather_ConnectionError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	address := upstream.URL
	upstream.Close()

	session := newTestSession(t, weather.NewClient(address, "test-key"))

	got := callTool(t, session, "fetch-weather", map[string]any{"city": "London"})

	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "Error fetching weather data: request failed"), got[0])
}

func TestFetchWeather_Concurrent(t *testing.T) {
	upstream, _ := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		city := r.URL.Query().Get("q")
		body := strings.Replace(londonBody, `"name": "London"`, fmt.Sprintf("%q: %q", "name", city), 1)
		_, _ = w.Write([]byte(body))
	})
	session := newTestSession(t, weather.NewClient(upstream.URL, "test-key"))

	cities := []string{"London", "Paris", "Tokyo", "Nagoya", "Osaka", "Fukuoka", "Berlin", "Madrid"}

	var wg sync.WaitGroup
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      "fetch-weather",
				Arguments: map[string]any{"city": city},
			})
			if !assert.NoError(t, err) {
				return
			}
			if !assert.Len(t, result.Content, 2) {
				return
			}
			summary, ok := result.Content[1].(*mcp.TextContent)
			if !assert.True(t, ok) {
				return
			}
			assert.True(t, strings.HasPrefix(summary.Text, "Weather for "+city+", GB:"), summary.Text)
		}(city)
	}
	wg.Wait()
}
