package server

import (
	"context"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type CalculateBMIInput struct {
	WeightKg float64 `json:"weightKg" jsonschema:"body weight in kilograms"`
	HeightM  float64 `json:"heightM" jsonschema:"height in meters"`
}

// calculateBMIHandler returns weight / height² as text.
// Zero height is not rejected and yields +Inf (or NaN with zero weight).
func (s *MCPServer) calculateBMIHandler(ctx context.Context, _ *mcp.CallToolRequest, input CalculateBMIInput) (*mcp.CallToolResult, any, error) {
	bmi := input.WeightKg / (input.HeightM * input.HeightM)

	return textResult(strconv.FormatFloat(bmi, 'f', -1, 64)), nil, nil
}
