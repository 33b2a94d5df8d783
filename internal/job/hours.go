package job

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var hoursRe = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)h)?(?:(\d+)m)?$`)

// ParseHours parses a human-friendly hour amount.
// Supported formats: "3", "3.5", "3h", "3h30m", "90m". Zero is allowed.
func ParseHours(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty hours")
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("hours must not be negative")
		}
		return v, nil
	}

	m := hoursRe.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return 0, fmt.Errorf("invalid hours %q (expected e.g. 4, 4.5, 3h, 3h30m)", s)
	}

	var hours float64
	if m[1] != "" {
		hours, _ = strconv.ParseFloat(m[1], 64)
	}
	if m[2] != "" {
		mins, _ := strconv.Atoi(m[2])
		hours += float64(mins) / 60
	}
	return hours, nil
}

// FormatHours renders hours rounded to two decimals: 13 → "13h", 3.5 → "3.5h".
func FormatHours(h float64) string {
	if h <= 0 {
		return "0h"
	}
	return strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64) + "h"
}
