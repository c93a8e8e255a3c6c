package extract

import (
	"regexp"
	"strings"
)

// Characters outside this set carry no signal for label parsing. Digits and
// the listed punctuation stay because dosage and date patterns depend on them.
var disallowed = regexp.MustCompile(`[^\w\s./\-%+()]`)

var whitespace = regexp.MustCompile(`\s+`)

// Normalize cleans raw OCR output into the canonical form the field patterns
// are written against: disallowed characters become spaces, whitespace runs
// collapse to a single space, and the ends are trimmed. Idempotent.
func Normalize(raw string) string {
	s := disallowed.ReplaceAllString(raw, " ")
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
