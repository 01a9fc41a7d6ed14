package ops

import (
	"fmt"
	"strings"

	"github.com/postflow/resolve-mcp/internal/errors"
)

// Request payloads arrive as decoded JSON, so numbers are float64 and
// everything needs coercion. These helpers keep the validation
// messages consistent across handlers.

func stringParam(data map[string]any, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", errors.Validation("ops.params", fmt.Sprintf("missing required parameter %q", key))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a non-empty string", key))
	}
	return s, nil
}

func optionalString(data map[string]any, key, fallback string) (string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a string", key))
	}
	return s, nil
}

func asString(v any, key string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a string", key))
	}
	return s, nil
}

func intParam(data map[string]any, key string) (int, error) {
	v, ok := data[key]
	if !ok {
		return 0, errors.Validation("ops.params", fmt.Sprintf("missing required parameter %q", key))
	}
	return coerceInt(key, v)
}

func optionalInt(data map[string]any, key string, fallback int) (int, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback, nil
	}
	return coerceInt(key, v)
}

func coerceInt(key string, v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be an integer", key))
		}
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be an integer", key))
	}
}

func optionalFloat(data map[string]any, key string, fallback float64) (float64, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a number", key))
	}
}

func optionalBool(data map[string]any, key string, fallback bool) (bool, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a boolean", key))
	}
	return b, nil
}

func stringsParam(data map[string]any, key string) ([]string, error) {
	v, ok := data[key]
	if !ok {
		return nil, errors.Validation("ops.params", fmt.Sprintf("missing required parameter %q", key))
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a list of strings", key))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be a list of strings", key))
	}
}

func mapParam(data map[string]any, key string) (map[string]any, error) {
	v, ok := data[key]
	if !ok {
		return nil, errors.Validation("ops.params", fmt.Sprintf("missing required parameter %q", key))
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errors.Validation("ops.params", fmt.Sprintf("parameter %q must be an object", key))
	}
	return m, nil
}

// trackTypeParam validates the track type against the two types the
// operations address.
func trackTypeParam(data map[string]any, key, fallback string) (string, error) {
	v, err := optionalString(data, key, fallback)
	if err != nil {
		return "", err
	}
	t := strings.ToLower(v)
	if t != "video" && t != "audio" {
		return "", errors.Validation("ops.params", fmt.Sprintf("parameter %q must be \"video\" or \"audio\", got %q", key, v))
	}
	return t, nil
}
