package regbrain

import "strings"

// Shorten collapses whitespace in text and truncates it to roughly
// width characters at a word boundary, appending "..." when trimmed.
// Used for fact previews in API responses and log lines.
func Shorten(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	if width <= 0 || len(text) <= width {
		return text
	}

	cut := strings.LastIndex(text[:width], " ")
	if cut <= 0 {
		cut = width
	}
	return text[:cut] + "..."
}
