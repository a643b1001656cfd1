package errors

import "errors"

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeToolNotFound     ErrorCode = "TOOL_NOT_FOUND"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeServerNotRunning ErrorCode = "SERVER_NOT_RUNNING"
	ErrCodeToolExecution    ErrorCode = "TOOL_EXECUTION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

var (
	ErrSessionNotConnected = errors.New("session not connected")
	ErrSessionNotRunning   = errors.New("session not running")
	ErrToolNotFound        = errors.New("tool not found")
)
