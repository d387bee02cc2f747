package log

import (
	"strings"
)

// Sanitize replaces line breaks, so the message is logged as a single line.
func Sanitize(in string) string {
	out := strings.ReplaceAll(in, "\n", `\n`)
	return strings.ReplaceAll(out, "\r", `\n`)
}
