package extract

import "fmt"

// BuildExtractionPrompt produces the analyst instruction for one chunk.
// The excerpt is embedded verbatim; the instruction pins the exact JSON
// shape ParseFacts expects and demands JSON-only output.
func BuildExtractionPrompt(chunkText, label string) string {
	return fmt.Sprintf(`You are an expert regulatory analyst focusing on Indian financial regulation (RBI, SEBI, IRDA, etc.).
You are given the following excerpt from a regulatory document labeled: %s.

EXCERPT:
"""%s"""

From this excerpt, extract:
1) Any specific regulatory *change* or *instruction* (short bullet, verbatim where possible).
2) The *affected entities* (who must comply — e.g., NBFCs, Payment System Providers, Banks, PSPs, merchants).
3) Any *compliance deadlines* or dates mentioned.
4) Any *penalty* or enforcement action described (if present).
5) Short *impact statement* on fintechs (1-2 sentences).
Return a JSON object with keys: "extractions" which should be a list of objects with keys:
- "source_label": <string>
- "change": <string>
- "affected": [<strings>]
- "deadline": <string or null>
- "penalty": <string or null>
- "impact": <string>

Return *only JSON*. Do not add any explanatory text.
`, label, chunkText)
}
