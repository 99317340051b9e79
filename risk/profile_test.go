package risk

import (
	"strings"
	"testing"
)

func TestCoerceRowDefaults(t *testing.T) {
	p := CoerceRow(map[string]string{})
	if p.Name != "unknown" {
		t.Errorf("name = %q", p.Name)
	}
	if p.EntityType != "NBFC" {
		t.Errorf("entity_type = %q", p.EntityType)
	}
	if p.AnnualRevenue != 0 || p.LoanPortfolioPct != 0 || p.NPAPct != 0 {
		t.Error("numeric defaults not zero")
	}
	if p.Region != "" {
		t.Errorf("region = %q", p.Region)
	}
}

func TestCoerceRowBadNumbers(t *testing.T) {
	p := CoerceRow(map[string]string{
		"name":               "Acme Finance",
		"annual_revenue":     "not-a-number",
		"npa_pct":            "",
		"loan_portfolio_pct": "62.5",
	})
	if p.Name != "Acme Finance" {
		t.Errorf("name = %q", p.Name)
	}
	if p.AnnualRevenue != 0 {
		t.Error("unparseable revenue should coerce to 0")
	}
	if p.NPAPct != 0 {
		t.Error("missing npa_pct should coerce to 0")
	}
	if p.LoanPortfolioPct != 62.5 {
		t.Errorf("loan_portfolio_pct = %v", p.LoanPortfolioPct)
	}
}

func TestLoadCSV(t *testing.T) {
	data := `name,entity_type,annual_revenue,loan_portfolio_pct,npa_pct,region
Acme Finance,NBFC,120.5,70,3.2,Mumbai
Swift Pay,PSP,45,,,"Delhi NCR"
`
	profiles, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles", len(profiles))
	}
	if profiles[0].Name != "Acme Finance" || profiles[0].NPAPct != 3.2 {
		t.Errorf("profile 0 = %+v", profiles[0])
	}
	if profiles[1].EntityType != "PSP" || profiles[1].Region != "Delhi NCR" {
		t.Errorf("profile 1 = %+v", profiles[1])
	}
	if profiles[1].NPAPct != 0 {
		t.Error("empty npa_pct should coerce to 0")
	}
}

func TestLoadCSVMissingColumns(t *testing.T) {
	data := "name\nAcme\n"
	profiles, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles", len(profiles))
	}
	if profiles[0].Name != "Acme" || profiles[0].EntityType != "NBFC" {
		t.Errorf("profile = %+v", profiles[0])
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	profiles, err := LoadCSV(strings.NewReader("name,entity_type\n"))
	if err != nil {
		t.Fatal(err)
	}
	if profiles != nil {
		t.Errorf("profiles = %v, want nil", profiles)
	}
}
