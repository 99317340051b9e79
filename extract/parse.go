package extract

import (
	"encoding/json"
	"strings"
)

// Tier records how far the parser had to degrade to produce facts.
type Tier int

const (
	// TierStrict means the whole response decoded as the requested shape.
	TierStrict Tier = iota
	// TierSubstring means facts were recovered from a JSON object
	// embedded in surrounding prose.
	TierSubstring
	// TierRaw means nothing decoded; the raw response was preserved as a
	// single fact's change text.
	TierRaw
)

func (t Tier) String() string {
	switch t {
	case TierStrict:
		return "strict"
	case TierSubstring:
		return "substring"
	default:
		return "raw"
	}
}

// Result is the outcome of parsing one completion response.
// The fact shape is identical across tiers; Tier is informational.
type Result struct {
	Facts []Fact
	Tier  Tier
}

// ParseFacts decodes an untrusted completion response into facts. It
// never fails: a strict decode is tried first, then recovery of a JSON
// object embedded between the first '{' and last '}', and finally the
// trimmed response is preserved verbatim as a single fact so no
// backend output is ever silently dropped.
//
// On every tier, facts with an empty source label get fallbackLabel
// and nil affected lists become empty.
func ParseFacts(response, fallbackLabel string) Result {
	res := Result{}

	if facts, ok := decodeFacts(response); ok {
		res.Facts, res.Tier = facts, TierStrict
	} else if inner, ok := innerObject(response); ok {
		if facts, ok := decodeFacts(inner); ok {
			res.Facts, res.Tier = facts, TierSubstring
		}
	}

	if res.Facts == nil {
		res.Tier = TierRaw
		res.Facts = []Fact{{
			SourceLabel: fallbackLabel,
			Change:      strings.TrimSpace(response),
			Affected:    []string{},
		}}
	}

	for i := range res.Facts {
		if res.Facts[i].SourceLabel == "" {
			res.Facts[i].SourceLabel = fallbackLabel
		}
		if res.Facts[i].Affected == nil {
			res.Facts[i].Affected = []string{}
		}
	}
	return res
}

// decodeFacts attempts a strict decode of data as one of the accepted
// shapes: an {"extractions": [...]} envelope, a bare fact array, or a
// single fact object.
func decodeFacts(data string) ([]Fact, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, false
	}

	switch data[0] {
	case '{':
		var envelope struct {
			Extractions json.RawMessage `json:"extractions"`
		}
		if err := json.Unmarshal([]byte(data), &envelope); err != nil {
			return nil, false
		}
		if len(envelope.Extractions) > 0 {
			// A present-but-null list is a valid empty extraction.
			if string(envelope.Extractions) == "null" {
				return []Fact{}, true
			}
			var facts []Fact
			if err := json.Unmarshal(envelope.Extractions, &facts); err != nil {
				return nil, false
			}
			return facts, true
		}
		// No envelope key: treat the object as a single fact.
		var fact Fact
		if err := json.Unmarshal([]byte(data), &fact); err != nil {
			return nil, false
		}
		return []Fact{fact}, true
	case '[':
		var facts []Fact
		if err := json.Unmarshal([]byte(data), &facts); err != nil {
			return nil, false
		}
		return facts, true
	default:
		return nil, false
	}
}

// innerObject returns the substring between the first '{' and the last
// '}' of s, for responses that wrap JSON in prose.
func innerObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
