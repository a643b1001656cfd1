package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const summaryTemplate = `
Weather for %s, %s:
Temperature: %s°C (feels like %s°C)
Conditions: %s - %s
Humidity: %d%%
Wind: %s m/s, direction: %d°
`

// FormatJSON re-encodes the report wrapped in literal square brackets.
// The brackets are decoration, the content is a single JSON object.
func FormatJSON(report *Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode weather report: %w", err)
	}
	return "[" + string(data) + "]", nil
}

// Summary renders the human readable multi-line summary.
// It returns ErrNoConditions when the report carries no condition descriptor.
func Summary(report *Report) (string, error) {
	if len(report.Weather) == 0 {
		return "", ErrNoConditions
	}
	condition := report.Weather[0]

	text := fmt.Sprintf(summaryTemplate,
		report.Name, report.Sys.Country,
		formatNumber(report.Main.Temp), formatNumber(report.Main.FeelsLike),
		condition.Main, condition.Description,
		report.Main.Humidity,
		formatNumber(report.Wind.Speed), report.Wind.Deg,
	)
	return strings.TrimSpace(text), nil
}

// formatNumber prints the shortest decimal form: 15.2, 14, 3.1
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
