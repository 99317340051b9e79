// Package risk scores company profiles against extracted compliance
// facts.
package risk

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Profile describes one company to score. Field defaults applied by
// CoerceRow: Name "unknown", EntityType "NBFC", numerics 0.0, Region "".
type Profile struct {
	Name             string  `json:"name"`
	EntityType       string  `json:"entity_type"`
	AnnualRevenue    float64 `json:"annual_revenue"`
	LoanPortfolioPct float64 `json:"loan_portfolio_pct"`
	NPAPct           float64 `json:"npa_pct"`
	Region           string  `json:"region"`
}

// Normalize fills the documented defaults on a profile. Every scoring
// path runs through it, so profiles from JSON bodies get the same
// treatment as rows coerced from CSV/XLSX.
func (p Profile) Normalize() Profile {
	if strings.TrimSpace(p.Name) == "" {
		p.Name = "unknown"
	}
	if strings.TrimSpace(p.EntityType) == "" {
		p.EntityType = "NBFC"
	}
	return p
}

// CoerceRow builds a Profile from a loosely-typed row, substituting
// defaults for missing or unparseable fields. A bad cell never aborts
// a batch.
func CoerceRow(row map[string]string) Profile {
	return Profile{
		Name:             stringField(row, "name", ""),
		EntityType:       stringField(row, "entity_type", ""),
		AnnualRevenue:    floatField(row, "annual_revenue"),
		LoanPortfolioPct: floatField(row, "loan_portfolio_pct"),
		NPAPct:           floatField(row, "npa_pct"),
		Region:           stringField(row, "region", ""),
	}.Normalize()
}

func stringField(row map[string]string, key, def string) string {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return def
	}
	return v
}

func floatField(row map[string]string, key string) float64 {
	v := strings.TrimSpace(row[key])
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

// LoadCSV reads header-mapped company profiles. Expected columns:
// name, entity_type, annual_revenue, loan_portfolio_pct, npa_pct,
// region. Missing columns fall back to field defaults.
func LoadCSV(r io.Reader) ([]Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading companies CSV: %w", err)
	}
	return rowsToProfiles(records), nil
}

// LoadXLSX reads company profiles from the first sheet of a workbook,
// header row first.
func LoadXLSX(path string) ([]Profile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening companies XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets in companies XLSX")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading companies XLSX: %w", err)
	}
	return rowsToProfiles(rows), nil
}

// rowsToProfiles maps a header row plus data rows to profiles. Header
// names are lowercased; short rows are padded with empty cells.
func rowsToProfiles(rows [][]string) []Profile {
	if len(rows) < 2 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	profiles := make([]Profile, 0, len(rows)-1)
	for _, row := range rows[1:] {
		m := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				m[h] = row[i]
			}
		}
		profiles = append(profiles, CoerceRow(m))
	}
	return profiles
}
