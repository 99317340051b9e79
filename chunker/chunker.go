// Package chunker splits document text into bounded segments for
// completion requests.
package chunker

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the default chunk size bound.
const DefaultMaxChars = 2500

// Chunk splits text into segments of at most maxChars characters,
// scanning left to right. When the current window contains a line break
// past 60% of the window, the cut moves back to that break so segments
// end on natural boundaries; the break itself is consumed. Every
// returned segment is trimmed of surrounding whitespace and non-empty.
//
// Empty or whitespace-only input returns nil. Text shorter than
// maxChars comes back as a single segment.
func Chunk(text string, maxChars int) []string {
	text = strings.TrimSpace(text)
	if text == "" || maxChars <= 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(text); {
		end := i + maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			// Never cut mid-rune: regulator text carries rupee signs,
			// section marks and Hindi passages.
			for end > i && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == i {
				// maxChars is smaller than one rune; emit the whole rune.
				_, size := utf8.DecodeRuneInString(text[i:])
				end = i + size
			}
		}
		window := text[i:end]

		if end < len(text) {
			// Prefer a late line break over a hard cut mid-line.
			if brk := strings.LastIndexByte(window, '\n'); brk > maxChars*6/10 {
				window = window[:brk]
				i += brk + 1
			} else {
				i = end
			}
		} else {
			i = len(text)
		}

		if seg := strings.TrimSpace(window); seg != "" {
			chunks = append(chunks, seg)
		}
	}
	return chunks
}
