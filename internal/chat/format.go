package chat

import "regexp"

// Bold markdown spans, optionally led by a list number, become headings in
// the rendered reply. "1. **Setup**" -> "<h2>1. Setup</h2>".
var headingPattern = regexp.MustCompile(`(\d*\.?\s?)\*\*(.*?)\*\*`)

// FormatReply rewrites bold markdown segments of an assistant reply into h2
// tags for the front-end. The stored message keeps the raw text; only the
// response body is transformed.
func FormatReply(raw string) string {
	return headingPattern.ReplaceAllString(raw, "<h2>$1$2</h2>")
}
