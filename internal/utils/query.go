// Package utils holds small parsing helpers for HTTP query values.
package utils

import (
	"strconv"
	"strings"
)

// ParseLimit reads a page-size query value. Blank or malformed input yields
// def; parsed values are clamped to [1, hi].
func ParseLimit(raw string, def, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		n = def
	}
	return min(max(n, 1), hi)
}
