package fields

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; whatever it changes beyond entity escaping is markup.
var strict = bluemonday.StrictPolicy()

// The HTML tokenizer folds CR and CRLF into LF in text, which is not markup.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ContainsMarkup reports whether an HTML parser would find a tag or comment in s.
func ContainsMarkup(s string) bool {
	s = lineBreaks.Replace(s)
	return html.UnescapeString(strict.Sanitize(s)) != s
}
