package application

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/agexparts/freight-service/internal/domain"
)

// toNumber coerces a decoded JSON value to a float
func toNumber(v any) (float64, bool) {
	return domain.ParseAmount(v)
}

func numberOr(v any, fallback float64) float64 {
	if f, ok := toNumber(v); ok {
		return f
	}
	return fallback
}

func intOr(v any, fallback int) int {
	if f, ok := toNumber(v); ok {
		return int(math.Round(f))
	}
	return fallback
}

func boolOr(v any, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true
		case "false", "no", "n", "0":
			return false
		}
	case float64:
		return b != 0
	}
	return fallback
}

// str returns a trimmed string for strings and numbers, "" otherwise
func str(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func array(v any) []any {
	a, _ := v.([]any)
	return a
}

// first returns the first key of m holding a non-empty value
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	return str(first(m, keys...))
}

func stringList(v any) []string {
	switch l := v.(type) {
	case string:
		if s := strings.TrimSpace(l); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range l {
			if s := str(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
