package fetch

import (
	"regexp"
	"strings"
)

var wsRe = regexp.MustCompile(`\s+`)

// clean collapses runs of whitespace and trims the result.
func clean(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}
