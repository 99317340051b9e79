// Command regbrain runs the extraction pipeline over document files
// and writes the run artifacts to an output directory.
//
// Usage:
//
//	regbrain [-config cfg.json] [-out DIR] [-companies FILE.csv] [-sample N] doc1.pdf doc2.txt ...
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/arjunvaidya/regbrain"
	"github.com/arjunvaidya/regbrain/export"
	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/risk"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON)")
	outDir := flag.String("out", ".", "Output directory for artifacts")
	companiesPath := flag.String("companies", "", "Companies CSV or XLSX for risk scoring")
	maxChars := flag.Int("max-chars", 0, "Chunk size bound (0 = config default)")
	sample := flag.Int("sample", -1, "Chunks analyzed per document (0 = all, -1 = config default)")
	noSummary := flag.Bool("no-summary", false, "Skip the consolidated summary")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if flag.NArg() == 0 {
		slog.Error("no input documents")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := regbrain.LoadConfig(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	engine, err := regbrain.New(cfg)
	if err != nil {
		slog.Error("creating engine", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var docs []extract.Document
	for _, path := range flag.Args() {
		doc, err := engine.IngestFile(ctx, path)
		if err != nil {
			slog.Error("ingesting document", "path", path, "error", err)
			os.Exit(1)
		}
		docs = append(docs, doc)
	}

	var opts []regbrain.ExtractOption
	if *maxChars > 0 {
		opts = append(opts, regbrain.WithMaxChars(*maxChars))
	}
	if *sample >= 0 {
		opts = append(opts, regbrain.WithSampleLimit(*sample))
	}

	facts, err := engine.Extract(ctx, docs, opts...)
	if err != nil {
		slog.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		slog.Error("creating output directory", "dir", *outDir, "error", err)
		os.Exit(1)
	}

	if err := writeFacts(filepath.Join(*outDir, "extractions.json"), facts); err != nil {
		slog.Error("writing extractions", "error", err)
		os.Exit(1)
	}

	if !*noSummary && len(facts) > 0 {
		summary, err := engine.Summarize(ctx, facts)
		if err != nil {
			slog.Error("summary failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(filepath.Join(*outDir, "summary.md"), []byte(summary), 0o644); err != nil {
			slog.Error("writing summary", "error", err)
			os.Exit(1)
		}
	}

	if *companiesPath != "" {
		profiles, err := loadProfiles(*companiesPath)
		if err != nil {
			slog.Error("loading companies", "path", *companiesPath, "error", err)
			os.Exit(1)
		}

		assessments, err := engine.ScoreRiskAll(ctx, profiles, facts)
		if err != nil {
			slog.Error("risk scoring failed", "error", err)
			os.Exit(1)
		}

		if err := writeRisk(*outDir, assessments); err != nil {
			slog.Error("writing risk scores", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("run complete", "documents", len(docs), "facts", len(facts), "out", *outDir)
}

func writeFacts(path string, facts []extract.Fact) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteFactsJSON(f, facts)
}

func loadProfiles(path string) ([]risk.Profile, error) {
	if filepath.Ext(path) == ".xlsx" {
		return risk.LoadXLSX(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return risk.LoadCSV(f)
}

func writeRisk(outDir string, assessments []risk.Assessment) error {
	f, err := os.Create(filepath.Join(outDir, "risk_scores.csv"))
	if err != nil {
		return err
	}
	if err := export.WriteRiskCSV(f, assessments); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return export.WriteRiskXLSX(filepath.Join(outDir, "risk_scores.xlsx"), assessments)
}
