// Package regbrain ingests regulatory documents, extracts structured
// compliance facts through an LLM completion backend, aggregates them
// into a consolidated briefing, and scores company profiles for
// regulatory and fraud risk.
package regbrain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/arjunvaidya/regbrain/extract"
	"github.com/arjunvaidya/regbrain/llm"
	"github.com/arjunvaidya/regbrain/parser"
	"github.com/arjunvaidya/regbrain/risk"
	"github.com/arjunvaidya/regbrain/summarize"
)

// Engine is the main entry point for the compliance extraction engine.
type Engine interface {
	// IngestFile parses a document file into a labeled text document.
	// Unknown formats return ErrUnsupportedFormat; a file that parses
	// but yields no text comes back with empty Text, not an error.
	IngestFile(ctx context.Context, path string) (extract.Document, error)

	// Extract runs chunked fact extraction over the documents. Output
	// order follows document then chunk order regardless of
	// concurrency. The only error is context cancellation.
	Extract(ctx context.Context, docs []extract.Document, opts ...ExtractOption) ([]extract.Fact, error)

	// Summarize produces the consolidated markdown briefing for the
	// fact list.
	Summarize(ctx context.Context, facts []extract.Fact) (string, error)

	// ScoreRisk assesses one company profile against the fact list.
	ScoreRisk(ctx context.Context, profile risk.Profile, facts []extract.Fact) (risk.Assessment, error)

	// ScoreRiskAll assesses every profile, best effort: a company whose
	// backend call fails yields an unknown-risk record.
	ScoreRiskAll(ctx context.Context, profiles []risk.Profile, facts []extract.Fact) ([]risk.Assessment, error)
}

// ExtractOption configures one extraction run.
type ExtractOption func(*extractOptions)

type extractOptions struct {
	maxChars    int
	sampleLimit int
}

// WithMaxChars overrides the chunk size bound for this run.
func WithMaxChars(n int) ExtractOption {
	return func(o *extractOptions) { o.maxChars = n }
}

// WithSampleLimit overrides how many chunks per document are analyzed.
// Zero analyzes every chunk.
func WithSampleLimit(n int) ExtractOption {
	return func(o *extractOptions) { o.sampleLimit = n }
}

// engine is the concrete implementation of Engine.
type engine struct {
	cfg      Config
	provider llm.Provider
	parsers  *parser.Registry
	scorer   *risk.Scorer
}

// New creates a new Regbrain engine with the given configuration.
func New(cfg Config) (Engine, error) {
	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.Completion.Provider,
		Model:    cfg.Completion.Model,
		BaseURL:  cfg.Completion.BaseURL,
		APIKey:   cfg.Completion.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return NewWithProvider(cfg, provider), nil
}

// NewWithProvider creates an engine around an injected completion
// client. Useful for tests and for callers that share one client
// across engines.
func NewWithProvider(cfg Config, provider llm.Provider) Engine {
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = DefaultConfig().MaxChunkChars
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConfig().Concurrency
	}
	return &engine{
		cfg:      cfg,
		provider: provider,
		parsers:  parser.NewRegistry(),
		scorer:   risk.NewScorer(provider, cfg.Completion.Model, cfg.Temperature),
	}
}

func (e *engine) IngestFile(ctx context.Context, path string) (extract.Document, error) {
	label := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	p, err := e.parsers.Get(ext)
	if err != nil {
		return extract.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	res, err := p.Parse(ctx, path)
	if err != nil {
		// An unreadable file becomes an empty document so a batch run
		// keeps going; the pipeline produces zero facts for it.
		slog.Warn("ingest: parse failed", "path", path, "error", err)
		return extract.Document{Label: label}, nil
	}

	slog.Info("ingest: parsed", "path", path, "chars", len(res.Text), "method", res.Method)
	return extract.Document{Label: label, Text: res.Text}, nil
}

func (e *engine) Extract(ctx context.Context, docs []extract.Document, opts ...ExtractOption) ([]extract.Fact, error) {
	options := extractOptions{
		maxChars:    e.cfg.MaxChunkChars,
		sampleLimit: e.cfg.SampleLimit,
	}
	for _, opt := range opts {
		opt(&options)
	}

	pipeline := extract.New(e.provider, extract.Config{
		Model:       e.cfg.Completion.Model,
		Temperature: e.cfg.Temperature,
		MaxChars:    options.maxChars,
		SampleLimit: options.sampleLimit,
		Concurrency: e.cfg.Concurrency,
	})
	return pipeline.Run(ctx, docs)
}

func (e *engine) Summarize(ctx context.Context, facts []extract.Fact) (string, error) {
	if len(facts) == 0 {
		return "", ErrNoFacts
	}
	return summarize.Summarize(ctx, e.provider, e.cfg.Completion.Model, e.cfg.Temperature, facts)
}

func (e *engine) ScoreRisk(ctx context.Context, profile risk.Profile, facts []extract.Fact) (risk.Assessment, error) {
	return e.scorer.Score(ctx, profile, facts)
}

func (e *engine) ScoreRiskAll(ctx context.Context, profiles []risk.Profile, facts []extract.Fact) ([]risk.Assessment, error) {
	return e.scorer.ScoreAll(ctx, profiles, facts)
}
