package application

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	streetSuffix = regexp.MustCompile(`(?i)\b(dr|rd|st)\b\.?`)
	shipTimeExpr = regexp.MustCompile(`^\s*(\d{1,2}):(\d{1,2})(?::\d{1,2})?\s*(?:([aApP])\.?\s*[mM]\.?)?\s*$`)
)

var suffixWords = map[string]string{
	"dr": "Drive",
	"rd": "Road",
	"st": "Street",
}

// expandStreetSuffixes spells out Dr, Rd and St. The carrier's address
// matcher rejects some abbreviated street lines.
func expandStreetSuffixes(line string) string {
	return streetSuffix.ReplaceAllStringFunc(line, func(m string) string {
		return suffixWords[strings.ToLower(strings.TrimSuffix(m, "."))]
	})
}

// normalizeShipTime returns 24-hour HH:MM, or "" so the field is omitted
// when the input is out of range or carries anything but seconds or an
// am/pm suffix
func normalizeShipTime(raw string) string {
	m := shipTimeExpr.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 {
		return ""
	}

	switch strings.ToLower(m[3]) {
	case "":
		if hour > 23 {
			return ""
		}
	case "a":
		if hour < 1 || hour > 12 {
			return ""
		}
		hour %= 12
	case "p":
		if hour < 1 || hour > 12 {
			return ""
		}
		hour = hour%12 + 12
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}
