// Package internal holds helpers shared by the SQL entry stores.
package internal

import "strings"

// ScanPageSize bounds how many rows a single prefix-scan query fetches.
const ScanPageSize = 1000

// EscapeLikePattern escapes special LIKE characters (%, _, \) so a path
// prefix matches literally. Queries must declare ESCAPE '\'.
func EscapeLikePattern(pattern string) string {
	pattern = strings.ReplaceAll(pattern, `\`, `\\`)
	pattern = strings.ReplaceAll(pattern, `%`, `\%`)
	pattern = strings.ReplaceAll(pattern, `_`, `\_`)
	return pattern
}

// PrefixUpperBound returns the smallest string that sorts after every string
// starting with prefix under byte-wise comparison. It reports false when no
// such bound exists (empty prefix, or only 0xff bytes).
func PrefixUpperBound(prefix string) (string, bool) {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xff {
			b[i]++
			return string(b[:i+1]), true
		}
	}
	return "", false
}
