// Package args coerces free-text key=value tokens into the typed argument
// mapping consumed by tool calls.
//
// Values that parse as JSON keep their JSON type (numbers, booleans, null,
// quoted strings, arrays, objects); anything else passes through as a plain
// string. So count=3 is a number, dry_run=true a boolean, and name=alice a
// string without quoting gymnastics.
package args

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse converts key=value tokens into an argument map.
//
// A token without '=' or with an empty key is an error. Duplicate keys keep
// the last value.
func Parse(tokens []string) (map[string]any, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(tokens))

	for _, token := range tokens {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			return nil, fmt.Errorf("argument %q: expected key=value", token)
		}

		if key == "" {
			return nil, fmt.Errorf("argument %q: empty key", token)
		}

		out[key] = coerce(value)
	}

	return out, nil
}

// coerce interprets a value as JSON when possible, falling back to the raw
// string.
func coerce(value string) any {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return value
	}

	return v
}
