package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khirotaka/weather-mcp-server/internal/mcp"
	"github.com/khirotaka/weather-mcp-server/internal/validator"
	mcpErrors "github.com/khirotaka/weather-mcp-server/pkg/errors"
	mcpSDK "github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	defaultCallTimeout = 30 * time.Second
	pingTimeout        = 3 * time.Second
)

// isUnknownToolError checks if the error is from an unknown tool call
// The MCP SDK returns an error with the message pattern:
// "calling "tools/call": unknown tool "toolName""
func isUnknownToolError(err error) bool {
	return strings.Contains(err.Error(), "unknown tool")
}

// isInvalidParamsError checks if the SDK rejected the arguments against the tool's input schema
func isInvalidParamsError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "invalid params")
}

// extractErrorMessage extracts error message from CallToolResult Content.
// Returns the error message and true if result is an error, empty string and false otherwise.
func extractErrorMessage(result any) (string, bool) {
	toolResult, ok := result.(*mcpSDK.CallToolResult)
	if !ok {
		slog.Warn("Unexpected result type from CallTool",
			"type", fmt.Sprintf("%T", result),
			"expected", "*mcpSDK.CallToolResult",
		)
		return "", false
	}

	if !toolResult.IsError {
		return "", false
	}

	for _, content := range toolResult.Content {
		if textContent, ok := content.(*mcpSDK.TextContent); ok && textContent.Text != "" {
			return textContent.Text, true
		}
	}

	return "Tool execution failed", true
}

type Handler struct {
	clientManager ClientManagerInterface
	statuses      StatusRegistryInterface
	callTimeout   time.Duration
	startTime     time.Time
}

// NewHandler creates a Handler. A zero callTimeout falls back to 30s.
func NewHandler(cm ClientManagerInterface, statuses StatusRegistryInterface, callTimeout time.Duration) *Handler {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Handler{
		clientManager: cm,
		statuses:      statuses,
		callTimeout:   callTimeout,
		startTime:     time.Now(),
	}
}

type CallToolRequest struct {
	ToolName string `json:"toolName"`
	Input    any    `json:"input"`
}

func errorResponse(c *gin.Context, status int, code mcpErrors.ErrorCode, message string, details gin.H) {
	body := gin.H{
		"code":    code,
		"message": message,
	}
	if details != nil {
		body["details"] = details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

func (h *Handler) CallTool(c *gin.Context) {
	var req CallToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, mcpErrors.ErrCodeValidation, err.Error(), nil)
		return
	}

	if err := validator.ValidateRequest(req.ToolName, req.Input); err != nil {
		errorResponse(c, http.StatusBadRequest, mcpErrors.ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.callTimeout)
	defer cancel()

	result, err := h.clientManager.CallTool(ctx, req.ToolName, req.Input)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			errorResponse(c, http.StatusGatewayTimeout, mcpErrors.ErrCodeTimeout,
				fmt.Sprintf("Tool execution timed out after %dms", h.callTimeout.Milliseconds()),
				gin.H{
					"toolName": req.ToolName,
					"timeout":  h.callTimeout.Milliseconds(),
				})
			return
		}

		status := http.StatusInternalServerError
		code := mcpErrors.ErrCodeToolExecution

		switch {
		case errors.Is(err, mcpErrors.ErrToolNotFound), isUnknownToolError(err):
			status = http.StatusNotFound
			code = mcpErrors.ErrCodeToolNotFound
		case errors.Is(err, mcpErrors.ErrSessionNotConnected), errors.Is(err, mcpErrors.ErrSessionNotRunning):
			status = http.StatusServiceUnavailable
			code = mcpErrors.ErrCodeServerNotRunning
		case isInvalidParamsError(err):
			status = http.StatusBadRequest
			code = mcpErrors.ErrCodeValidation
		}

		errorResponse(c, status, code, err.Error(), nil)
		return
	}

	// weather と BMI は常に成功扱いだが、SDK 側のエラー結果はここで拾う
	if errMsg, isToolError := extractErrorMessage(result); isToolError {
		errorResponse(c, http.StatusInternalServerError, mcpErrors.ErrCodeToolExecution, errMsg,
			gin.H{"toolName": req.ToolName})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}

func (h *Handler) GetTools(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tools":   h.clientManager.GetTools(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	statuses := h.statuses.GetAllStatuses()
	status := "ok"
	for _, s := range statuses {
		if s != mcp.StatusAvailable {
			status = "degraded"
			break
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	ping := "ok"
	if err := h.clientManager.Ping(ctx); err != nil {
		status = "degraded"
		ping = err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"uptime":   time.Since(h.startTime).Seconds(),
		"sessions": statuses,
		"ping":     ping,
	})
}
