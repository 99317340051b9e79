package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/llm"
)

// Assessment is one company's scored risk posture. RiskScore is a
// pointer so a failed assessment carries null rather than zero.
type Assessment struct {
	Company                string   `json:"company"`
	RiskLevel              string   `json:"risk_level"`
	RiskScore              *float64 `json:"risk_score"`
	TopRisks               []string `json:"top_risks"`
	RecommendedMitigations []string `json:"recommended_mitigations"`
	Notes                  string   `json:"notes"`
}

// fallbackNotesLimit bounds how much of an unparseable response is
// preserved in the fallback assessment's notes.
const fallbackNotesLimit = 400

// BuildPrompt produces the risk-scoring instruction for one company
// against the current fact list.
func BuildPrompt(profile Profile, facts []extract.Fact) string {
	return fmt.Sprintf(`You are a FinTech risk analyst. Given the following company profile and recent regulatory extractions, estimate the company's near-term regulatory risk and fraud exposure.

Company:
%s

Recent compliance changes (short JSON):
%s

Produce a JSON object:
{
  "company": %q,
  "risk_level": "low|medium|high",
  "risk_score": <0-100>,
  "top_risks": ["..."],
  "recommended_mitigations": ["... 3 to 5 items ..."],
  "notes": "short rationale (1-2 sentences)"
}

Return JSON only.
`, marshalJSON(profile), marshalJSON(factsOrEmpty(facts)), profile.Name)
}

// ParseAssessment decodes an untrusted completion response into an
// Assessment using the same degradation ladder as fact parsing, in
// single-object mode: strict decode, then the substring between the
// first '{' and last '}', and finally a designated unknown-risk record
// preserving the head of the raw response in Notes.
func ParseAssessment(response, company string) Assessment {
	if a, ok := decodeAssessment(response); ok {
		return normalize(a, company)
	}
	if start, end := strings.IndexByte(response, '{'), strings.LastIndexByte(response, '}'); start >= 0 && end > start {
		if a, ok := decodeAssessment(response[start : end+1]); ok {
			return normalize(a, company)
		}
	}

	// Preserve the head of the raw response, cut at a rune boundary.
	notes := response
	if len(notes) > fallbackNotesLimit {
		cut := fallbackNotesLimit
		for cut > 0 && !utf8.RuneStart(notes[cut]) {
			cut--
		}
		notes = notes[:cut]
	}
	return Assessment{
		Company:                company,
		RiskLevel:              "unknown",
		TopRisks:               []string{},
		RecommendedMitigations: []string{},
		Notes:                  notes,
	}
}

func decodeAssessment(data string) (Assessment, bool) {
	data = strings.TrimSpace(data)
	if data == "" || data[0] != '{' {
		return Assessment{}, false
	}
	var a Assessment
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return Assessment{}, false
	}
	return a, true
}

// normalize backfills the company name, lowercases the risk level and
// replaces nil lists with empty ones.
func normalize(a Assessment, company string) Assessment {
	if a.Company == "" {
		a.Company = company
	}
	a.RiskLevel = strings.ToLower(strings.TrimSpace(a.RiskLevel))
	if a.RiskLevel == "" {
		a.RiskLevel = "unknown"
	}
	if a.TopRisks == nil {
		a.TopRisks = []string{}
	}
	if a.RecommendedMitigations == nil {
		a.RecommendedMitigations = []string{}
	}
	return a
}

// Scorer runs risk assessments through a completion backend.
type Scorer struct {
	provider    llm.Provider
	model       string
	temperature float64
}

// NewScorer returns a Scorer bound to a provider and model.
func NewScorer(provider llm.Provider, model string, temperature float64) *Scorer {
	return &Scorer{provider: provider, model: model, temperature: temperature}
}

// Score assesses one company. The only error is a transport failure
// after the retry budget; malformed responses degrade inside
// ParseAssessment.
func (s *Scorer) Score(ctx context.Context, profile Profile, facts []extract.Fact) (Assessment, error) {
	profile = profile.Normalize()
	out, err := extract.Complete(ctx, s.provider, s.model, s.temperature, BuildPrompt(profile, facts))
	if err != nil {
		return Assessment{}, fmt.Errorf("scoring %s: %w", profile.Name, err)
	}
	return ParseAssessment(out, profile.Name), nil
}

// ScoreAll assesses every profile, best effort. A company whose
// completion fails yields an unknown-risk record and the batch
// continues; only context cancellation stops the loop early.
func (s *Scorer) ScoreAll(ctx context.Context, profiles []Profile, facts []extract.Fact) ([]Assessment, error) {
	start := time.Now()
	out := make([]Assessment, 0, len(profiles))

	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p = p.Normalize()
		a, err := s.Score(ctx, p, facts)
		if err != nil {
			slog.Warn("risk: company failed", "company", p.Name, "error", err)
			out = append(out, Assessment{
				Company:                p.Name,
				RiskLevel:              "unknown",
				TopRisks:               []string{},
				RecommendedMitigations: []string{},
			})
			continue
		}
		out = append(out, a)
	}

	slog.Info("risk: batch complete",
		"companies", len(profiles),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return out, nil
}

func factsOrEmpty(facts []extract.Fact) []extract.Fact {
	if facts == nil {
		return []extract.Fact{}
	}
	return facts
}

// marshalJSON serializes v without HTML escaping.
func marshalJSON(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
