package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
)

const (
	maxInputSize   = 100 * 1024 // 100KB
	maxNestDepth   = 10
	maxToolNameLen = 100
	toolNameField  = "toolName"
)

var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)
	dangerousKeys = []string{"__proto__", "constructor", "prototype"}
)

// ValidateRequest validates a REST bridge tool call before it reaches the MCP session
func ValidateRequest(toolName string, input any) error {
	if err := validateName(toolName, toolNameField, maxToolNameLen); err != nil {
		return err
	}
	return validateInput(input)
}

func validateName(name, field string, maxLength int) error {
	if name == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len(name) > maxLength {
		return fmt.Errorf("%s exceeds maximum length (%d characters)", field, maxLength)
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

func validateInput(input any) error {
	inputMap, ok := input.(map[string]any)
	if !ok {
		return errors.New("input must be a JSON object")
	}

	jsonBytes, err := json.Marshal(inputMap)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}
	if len(jsonBytes) > maxInputSize {
		return fmt.Errorf("input exceeds maximum size (%d bytes)", maxInputSize)
	}

	return walk(inputMap, 1)
}

// walk checks keys and nesting depth in one pass.
// depth counts the object or array currently being visited.
func walk(value any, depth int) error {
	switch v := value.(type) {
	case map[string]any:
		if depth > maxNestDepth {
			return fmt.Errorf("input nesting exceeds maximum depth (%d)", maxNestDepth)
		}
		for key, child := range v {
			// Prototype Pollution 対策
			if slices.Contains(dangerousKeys, key) {
				return fmt.Errorf("input contains forbidden key: %s", key)
			}
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
	case []any:
		if depth > maxNestDepth {
			return fmt.Errorf("input nesting exceeds maximum depth (%d)", maxNestDepth)
		}
		for _, child := range v {
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
