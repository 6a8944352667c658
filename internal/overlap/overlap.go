// Package overlap finds the overlapping region between two strings: the
// longest substring that is simultaneously a suffix of the first and a
// prefix of the second.
package overlap

import "strings"

// Longest returns the longest string that is both a suffix of a and a prefix
// of b. When no overlap exists and swap is true, the search is retried with
// the arguments reversed. Returns "" if no overlap exists either way.
func Longest(a, b string, swap bool) string {
	if o := suffixPrefix(a, b); o != "" {
		return o
	}
	if swap {
		return suffixPrefix(b, a)
	}
	return ""
}

// suffixPrefix scans from the longest candidate down so the first hit wins.
func suffixPrefix(a, b string) string {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return b[:n]
		}
	}
	return ""
}
