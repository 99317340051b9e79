package parser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestTextParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circular.txt")
	body := "Para 1: KYC norms revised.\nPara 2: Effective immediately.\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	p := &TextParser{}
	res, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != body {
		t.Errorf("text = %q", res.Text)
	}
	if res.Method != "native" {
		t.Errorf("method = %q", res.Method)
	}
}

func TestXLSXParser(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annex.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "entity")
	f.SetCellValue(sheet, "B1", "limit")
	f.SetCellValue(sheet, "A2", "NBFC")
	f.SetCellValue(sheet, "B2", "500000")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	p := &XLSXParser{}
	res, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Text, "| entity | limit |") {
		t.Errorf("header row missing: %q", res.Text)
	}
	if !strings.Contains(res.Text, "| NBFC | 500000 |") {
		t.Errorf("data row missing: %q", res.Text)
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	for _, f := range []string{"pdf", "txt", "md", "xlsx", "PDF"} {
		if _, err := r.Get(f); err != nil {
			t.Errorf("Get(%s): %v", f, err)
		}
	}
	if _, err := r.Get("docx"); err == nil {
		t.Error("unregistered format should error")
	}
}

func TestExtractTextDegrades(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	if got := r.ExtractText(ctx, "/nonexistent/file.pdf"); got != "" {
		t.Errorf("missing file = %q, want empty", got)
	}
	if got := r.ExtractText(ctx, "archive.zip"); got != "" {
		t.Errorf("unsupported format = %q, want empty", got)
	}

	path := filepath.Join(t.TempDir(), "ok.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := r.ExtractText(ctx, path); got != "hello" {
		t.Errorf("ExtractText = %q", got)
	}
}
