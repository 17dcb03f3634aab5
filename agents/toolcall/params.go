/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package toolcall

import (
	"encoding/json"
	"fmt"
)

// Extract extracts a required argument with type safety.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T
	value, exists := args[name]
	if !exists {
		return zero, fmt.Errorf("%s parameter is required", name)
	}
	return convert[T](name, value)
}

// ExtractOptional extracts an optional argument, returning defaultValue
// when it is absent.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}
	return convert[T](name, value)
}

func convert[T any](name string, value any) (T, error) {
	var zero T
	if v, ok := value.(T); ok {
		return v, nil
	}

	// Decoded JSON numbers arrive as float64 or json.Number.
	var f float64
	switch n := value.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return zero, fmt.Errorf("%s parameter must be of type %T, got %q", name, zero, n)
		}
		f = parsed
	default:
		return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
	}

	switch any(zero).(type) {
	case int:
		return any(int(f)).(T), nil
	case int32:
		return any(int32(f)).(T), nil
	case int64:
		return any(int64(f)).(T), nil
	case float64:
		return any(f).(T), nil
	}
	return zero, fmt.Errorf("%s parameter must be of type %T, got %T", name, zero, value)
}

// Error creates an error response for the model.
func Error(format string, args ...any) map[string]any {
	return map[string]any{
		"error": fmt.Sprintf(format, args...),
	}
}
