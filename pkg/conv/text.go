package conv

import "unicode/utf8"

// Truncate cuts s to at most max characters (runes) without splitting a
// multi-byte sequence. max <= 0 disables the limit.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
