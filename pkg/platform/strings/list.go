// Package strings provides string list helpers for configuration values.
package strings

import (
	"strings"
)

// SplitList splits s on sep, trims each element and drops empty ones and
// duplicates. Order is preserved.
//
// Example:
//
//	SplitList(" a:9092, b:9092,,a:9092 ", ",")
//	// Returns: []string{"a:9092", "b:9092"}
func SplitList(s, sep string) []string {
	var result []string
	seen := make(map[string]struct{})
	for part := range strings.SplitSeq(s, sep) {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
