package postgres

import "strings"

const maxLatest = 100

func stringOrDash(s string) string {
    if strings.TrimSpace(s) == "" { return "-" }
    return s
}

func clampLimit(limit int) int {
    if limit <= 0 { return 20 }
    if limit > maxLatest { return maxLatest }
    return limit
}
