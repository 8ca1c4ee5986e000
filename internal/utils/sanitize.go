package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StripTagsPolicy()

// SanitizePlainText strips HTML tags from untrusted input (the public lead
// capture form) and collapses whitespace, leaving plain text.
func SanitizePlainText(s string) string {
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}
