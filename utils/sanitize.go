package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()
	richPolicy   = bluemonday.UGCPolicy()
)

// SanitizeText strips all markup and surrounding whitespace. The result is
// plain text: entities are decoded, so "&lt;b&gt;" is stored as a literal
// "<b>". Render it only through escaping output such as html/template or
// JSON, never as raw HTML.
func SanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// SanitizeRichText keeps user-generated-content safe markup (links, emphasis, lists).
func SanitizeRichText(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}
