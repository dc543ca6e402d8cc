package nlp

import (
	"regexp"
	"strings"
)

// space is Unicode whitespace; RE2's \s only covers ASCII.
const space = `[\s\v\x{85}\x{1c}-\x{1f}\p{Z}]`

var (
	whitespaceRun = regexp.MustCompile(space + `+`)
	// Page markers such as "- 12 -" or "(12)". Any 1-4 digit number fenced by
	// dashes, parentheses or spaces goes with them.
	pageMarker = regexp.MustCompile(`[\-\( ]` + space + `*\p{Nd}{1,4}` + space + `*[\-\) ]`)
	spaceRun   = regexp.MustCompile(` {2,}`)
)

// Sanitize normalizes raw notes into a Document: whitespace runs collapse to a
// single space, page-number artifacts are dropped and the result is trimmed.
func Sanitize(text string) string {
	text = whitespaceRun.ReplaceAllString(text, " ")
	text = pageMarker.ReplaceAllString(text, " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
