package mysql

import "strings"

const maxLatest = 100

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// clampLimit keeps a listing limit within 1..maxLatest, defaulting to 20.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return 20
	case limit > maxLatest:
		return maxLatest
	default:
		return limit
	}
}
