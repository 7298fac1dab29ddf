package helpers

import (
	"strings"
	"unicode"
)

// Slugify lowercases s and joins its alphanumeric runs with single hyphens,
// e.g. "Devworks Bootcamp!" becomes "devworks-bootcamp".
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
