package export

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/risk"
)

func TestWriteFactsJSON(t *testing.T) {
	deadline := "2025-03-31"
	facts := []extract.Fact{
		{SourceLabel: "rbi.pdf - chunk 1", Change: "Limit raised to ₹5 lakh", Affected: []string{"Banks"}, Deadline: &deadline},
	}

	var buf bytes.Buffer
	if err := WriteFactsJSON(&buf, facts); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if !strings.Contains(out, `"source_label": "rbi.pdf - chunk 1"`) {
		t.Error("source_label missing or unindented")
	}
	if !strings.Contains(out, "₹5 lakh") {
		t.Error("rupee sign escaped or lost")
	}
	if !strings.Contains(out, `"deadline": "2025-03-31"`) {
		t.Error("deadline missing")
	}
}

func TestWriteFactsJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFactsJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil facts = %q, want []", buf.String())
	}
}

func TestWriteRiskCSV(t *testing.T) {
	score := 78.5
	assessments := []risk.Assessment{
		{Company: "Acme", RiskLevel: "high", RiskScore: &score, TopRisks: []string{"NPA", "KYC gaps"}, RecommendedMitigations: []string{"audit"}, Notes: "n"},
		{Company: "Broken", RiskLevel: "unknown", TopRisks: []string{}, RecommendedMitigations: []string{}},
	}

	var buf bytes.Buffer
	if err := WriteRiskCSV(&buf, assessments); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "company" || records[0][2] != "risk_score" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "78.5" {
		t.Errorf("score cell = %q", records[1][2])
	}
	if records[1][3] != "NPA; KYC gaps" {
		t.Errorf("top_risks cell = %q", records[1][3])
	}
	if records[2][2] != "" {
		t.Errorf("nil score cell = %q, want empty", records[2][2])
	}
}

func TestWriteRiskXLSX(t *testing.T) {
	score := 42.0
	path := filepath.Join(t.TempDir(), "risk.xlsx")
	assessments := []risk.Assessment{
		{Company: "Acme", RiskLevel: "medium", RiskScore: &score, TopRisks: []string{"late reporting"}},
	}

	if err := WriteRiskXLSX(path, assessments); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1][0] != "Acme" || rows[1][1] != "medium" || rows[1][2] != "42" {
		t.Errorf("data row = %v", rows[1])
	}
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSummary(&buf, "# Briefing\n"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "# Briefing\n" {
		t.Errorf("summary altered: %q", buf.String())
	}
}
