package domain

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseAmount coerces a decoded JSON value to a finite float. A string that
// is not a plain number ("1e3" is) has every character other than digits,
// '.' and '-' stripped, so "$1,234.50" parses as 1234.5.
func ParseAmount(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			cleaned := nonNumeric.ReplaceAllString(n, "")
			if cleaned == "" {
				return 0, false
			}
			if parsed, err = strconv.ParseFloat(cleaned, 64); err != nil {
				return 0, false
			}
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
