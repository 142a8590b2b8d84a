// Package utils holds small text helpers shared across packages.
package utils

// Truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. Safe for multi-byte text.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Dedupe returns the elements of items in first-seen order with duplicates
// and empty strings removed.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
