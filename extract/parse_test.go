package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFactsEnvelope(t *testing.T) {
	response := `{"extractions": [
		{"change": "KYC re-verification every 2 years", "affected": ["NBFCs"], "deadline": "2025-03-31", "penalty": null, "impact": "Onboarding flows must add re-KYC."},
		{"source_label": "explicit", "change": "Report frauds within 21 days", "affected": null, "deadline": null, "penalty": "Monetary penalty under the Act", "impact": ""}
	]}`

	res := ParseFacts(response, "circular.pdf - chunk 1")
	if res.Tier != TierStrict {
		t.Fatalf("tier = %s, want strict", res.Tier)
	}
	if len(res.Facts) != 2 {
		t.Fatalf("got %d facts, want 2", len(res.Facts))
	}

	if res.Facts[0].SourceLabel != "circular.pdf - chunk 1" {
		t.Errorf("missing label not backfilled: %q", res.Facts[0].SourceLabel)
	}
	if res.Facts[1].SourceLabel != "explicit" {
		t.Errorf("explicit label overwritten: %q", res.Facts[1].SourceLabel)
	}
	if res.Facts[1].Affected == nil {
		t.Error("nil affected not replaced with empty slice")
	}
	if res.Facts[0].Deadline == nil || *res.Facts[0].Deadline != "2025-03-31" {
		t.Error("deadline lost in decode")
	}
	if res.Facts[0].Penalty != nil {
		t.Error("null penalty should stay nil")
	}
}

func TestParseFactsBareArray(t *testing.T) {
	res := ParseFacts(`[{"change": "a"}, {"change": "b"}]`, "fallback")
	if res.Tier != TierStrict || len(res.Facts) != 2 {
		t.Fatalf("tier=%s facts=%d", res.Tier, len(res.Facts))
	}
	for _, f := range res.Facts {
		if f.SourceLabel != "fallback" {
			t.Errorf("label = %q", f.SourceLabel)
		}
	}
}

func TestParseFactsSingleObject(t *testing.T) {
	res := ParseFacts(`{"change": "solo", "impact": "minor"}`, "fb")
	if res.Tier != TierStrict || len(res.Facts) != 1 {
		t.Fatalf("tier=%s facts=%d", res.Tier, len(res.Facts))
	}
	if res.Facts[0].Change != "solo" {
		t.Errorf("change = %q", res.Facts[0].Change)
	}
}

func TestParseFactsSubstringRecovery(t *testing.T) {
	response := `Here is the result: {"change":"x"} Thanks.`
	res := ParseFacts(response, "fb")
	if res.Tier != TierSubstring {
		t.Fatalf("tier = %s, want substring", res.Tier)
	}
	if len(res.Facts) != 1 || res.Facts[0].Change != "x" {
		t.Fatalf("facts = %+v", res.Facts)
	}
	if res.Facts[0].SourceLabel != "fb" {
		t.Errorf("label = %q", res.Facts[0].SourceLabel)
	}
}

func TestParseFactsFailClosed(t *testing.T) {
	raw := "  The model refused to answer in JSON today. {broken  "
	res := ParseFacts(raw, "doc.pdf - chunk 3")
	if res.Tier != TierRaw {
		t.Fatalf("tier = %s, want raw", res.Tier)
	}
	if len(res.Facts) != 1 {
		t.Fatalf("got %d facts, want 1", len(res.Facts))
	}
	f := res.Facts[0]
	if f.Change != strings.TrimSpace(raw) {
		t.Errorf("raw response not preserved: %q", f.Change)
	}
	if f.SourceLabel != "doc.pdf - chunk 3" {
		t.Errorf("label = %q", f.SourceLabel)
	}
	if f.Affected == nil || len(f.Affected) != 0 {
		t.Errorf("affected = %v, want empty", f.Affected)
	}
	if f.Deadline != nil || f.Penalty != nil || f.Impact != "" {
		t.Error("fallback record has non-default fields")
	}
}

func TestParseFactsScalarResponse(t *testing.T) {
	res := ParseFacts("42", "fb")
	if res.Tier != TierRaw {
		t.Fatalf("tier = %s, want raw", res.Tier)
	}
	if res.Facts[0].Change != "42" {
		t.Errorf("change = %q", res.Facts[0].Change)
	}
}

func TestParseFactsIdempotent(t *testing.T) {
	res := ParseFacts(`{"extractions":[{"change":"c","affected":["Banks"],"impact":"i"}]}`, "label")

	encoded, err := json.Marshal(res.Facts)
	if err != nil {
		t.Fatal(err)
	}
	again := ParseFacts(string(encoded), "label")
	if again.Tier != TierStrict {
		t.Fatalf("re-parse tier = %s", again.Tier)
	}
	if len(again.Facts) != len(res.Facts) || again.Facts[0].Change != res.Facts[0].Change {
		t.Error("round trip changed facts")
	}
	if again.Facts[0].SourceLabel != "label" {
		t.Errorf("label = %q", again.Facts[0].SourceLabel)
	}
}

func TestParseFactsNullExtractions(t *testing.T) {
	// An envelope carrying a null or empty list is a valid response
	// with nothing extracted, not a junk single fact.
	for _, in := range []string{`{"extractions": null}`, `{"extractions": []}`} {
		res := ParseFacts(in, "fb")
		if res.Tier != TierStrict {
			t.Fatalf("ParseFacts(%s) tier = %s", in, res.Tier)
		}
		if len(res.Facts) != 0 {
			t.Fatalf("ParseFacts(%s) facts = %+v, want none", in, res.Facts)
		}
	}
}

func TestBuildExtractionPrompt(t *testing.T) {
	p := BuildExtractionPrompt("Para 2.1: LRS limits revised.", "master-circular.pdf - chunk 2")
	if !strings.Contains(p, `"""Para 2.1: LRS limits revised."""`) {
		t.Error("excerpt not embedded verbatim")
	}
	if !strings.Contains(p, "master-circular.pdf - chunk 2") {
		t.Error("label missing from prompt")
	}
	if !strings.Contains(p, `"extractions"`) || !strings.Contains(p, `"source_label"`) {
		t.Error("schema contract missing from prompt")
	}
}
