package mcp

import (
	"maps"
	"sync"
)

// SessionStatus represents the status of a bridged MCP session
type SessionStatus string

const (
	StatusAvailable   SessionStatus = "available"
	StatusUnavailable SessionStatus = "unavailable"
	StatusCrashed     SessionStatus = "crashed"
)

// StatusRegistry tracks session status by server name
type StatusRegistry struct {
	statuses map[string]SessionStatus
	mu       sync.RWMutex
}

// NewStatusRegistry creates an empty StatusRegistry
func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		statuses: make(map[string]SessionStatus),
	}
}

// GetStatus returns the current status; unknown names are unavailable
func (r *StatusRegistry) GetStatus(name string) SessionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status, ok := r.statuses[name]
	if !ok {
		return StatusUnavailable
	}
	return status
}

// SetStatus updates the status of a session
func (r *StatusRegistry) SetStatus(name string, status SessionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[name] = status
}

// CompareAndSwapStatus updates the status only if the current status matches expected
func (r *StatusRegistry) CompareAndSwapStatus(name string, expected, new SessionStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.statuses[name]
	if !ok {
		current = StatusUnavailable
	}

	if current == expected {
		r.statuses[name] = new
		return true
	}
	return false
}

// GetAllStatuses returns a copy of all statuses
func (r *StatusRegistry) GetAllStatuses() map[string]SessionStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make(map[string]SessionStatus, len(r.statuses))
	maps.Copy(statuses, r.statuses)
	return statuses
}
