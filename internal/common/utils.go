package common

import "strings"

// HasAnyPrefix reports whether s starts with any of the prefixes.
func HasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// NormalizeHeader trims a CSV header cell and folds it to lower case so
// files exported with padded or re-cased column names still match.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// HeaderIndex maps normalized header names to their column positions.
// The first occurrence of a duplicated name wins.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}
