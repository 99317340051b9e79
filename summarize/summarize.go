// Package summarize consolidates extracted compliance facts into a
// markdown briefing for product and compliance teams.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/llm"
)

// Buckets are the fixed checklist groups the summary is organized by.
var Buckets = [5]string{"KYC", "Reporting", "Risk", "Technology", "Payments"}

// BuildPrompt produces the aggregation instruction. The full fact list
// is embedded as JSON with non-ASCII characters preserved, so amounts
// and names from regulator documents survive the round trip.
func BuildPrompt(facts []extract.Fact) string {
	return fmt.Sprintf(`You are a senior regulatory consultant summarizing extracted rules for product and compliance teams at fintechs.

Given the following JSON array of extracted items from regulator documents:
%s

Produce a structured summary in markdown that contains:
- Top 6 new/important compliance changes (bullet list with one-line explanation each)
- A consolidated compliance checklist for fintechs (checkbox-style markdown) grouped by function (%s)
- A short executive summary (3-4 lines) describing the overall risk posture for fintechs arising from these changes.

Return MARKDOWN only.
`, marshalFacts(facts), strings.Join(Buckets[:], ", "))
}

// Summarize runs one completion over the fact list and returns the
// markdown blob as-is. The backend owns the ranking; the output is
// opaque to callers.
func Summarize(ctx context.Context, p llm.Provider, model string, temperature float64, facts []extract.Fact) (string, error) {
	start := time.Now()

	out, err := extract.Complete(ctx, p, model, temperature, BuildPrompt(facts))
	if err != nil {
		return "", fmt.Errorf("summarizing facts: %w", err)
	}

	slog.Info("summarize: complete",
		"facts", len(facts),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return out, nil
}

// marshalFacts serializes facts without HTML escaping. A nil slice
// serializes as an empty array.
func marshalFacts(facts []extract.Fact) string {
	if facts == nil {
		facts = []extract.Fact{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(facts); err != nil {
		return "[]"
	}
	return strings.TrimSpace(buf.String())
}
