// Package export writes run artifacts: the fact list as JSON, risk
// scores as CSV or XLSX, and the consolidated summary as markdown.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/risk"
)

// WriteFactsJSON writes the fact list as an indented JSON array with
// HTML escaping off, so rupee signs and regulator names survive
// byte-for-byte. A nil slice writes an empty array.
func WriteFactsJSON(w io.Writer, facts []extract.Fact) error {
	if facts == nil {
		facts = []extract.Fact{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(facts)
}

var riskHeader = []string{"company", "risk_level", "risk_score", "top_risks", "recommended_mitigations", "notes"}

// WriteRiskCSV writes risk assessments as header-first CSV. List
// fields are joined with "; "; a nil score becomes an empty cell.
func WriteRiskCSV(w io.Writer, assessments []risk.Assessment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(riskHeader); err != nil {
		return fmt.Errorf("writing risk CSV header: %w", err)
	}
	for _, a := range assessments {
		if err := cw.Write(riskRow(a)); err != nil {
			return fmt.Errorf("writing risk CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRiskXLSX writes risk assessments as a single-sheet workbook at
// path, same columns as the CSV artifact.
func WriteRiskXLSX(path string, assessments []risk.Assessment) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]string{riskHeader}
	for _, a := range assessments {
		rows = append(rows, riskRow(a))
	}

	for r, row := range rows {
		for c, val := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("addressing cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("writing cell: %w", err)
			}
		}
	}
	return f.SaveAs(path)
}

// WriteSummary writes the markdown summary blob unchanged.
func WriteSummary(w io.Writer, summary string) error {
	_, err := io.WriteString(w, summary)
	return err
}

func riskRow(a risk.Assessment) []string {
	score := ""
	if a.RiskScore != nil {
		score = strconv.FormatFloat(*a.RiskScore, 'f', -1, 64)
	}
	return []string{
		a.Company,
		a.RiskLevel,
		score,
		strings.Join(a.TopRisks, "; "),
		strings.Join(a.RecommendedMitigations, "; "),
		a.Notes,
	}
}
