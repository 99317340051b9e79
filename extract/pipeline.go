package extract

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/arjunvaidya/regbrain/chunker"
	"github.com/arjunvaidya/regbrain/llm"
)

// Config controls one extraction run.
type Config struct {
	Model       string
	Temperature float64
	// MaxChars bounds chunk size. Defaults to chunker.DefaultMaxChars.
	MaxChars int
	// SampleLimit keeps only the first N chunks of each document as a
	// cost control. 0 or negative analyzes every chunk.
	SampleLimit int
	// Concurrency is the number of parallel completion calls. Defaults
	// to 4.
	Concurrency int
}

// Pipeline runs chunked fact extraction over documents.
type Pipeline struct {
	provider llm.Provider
	cfg      Config
}

// New returns a Pipeline. Zero-value config fields get defaults.
func New(provider llm.Provider, cfg Config) *Pipeline {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = chunker.DefaultMaxChars
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Pipeline{provider: provider, cfg: cfg}
}

// unit is one chunk of one document, carrying its provenance label.
type unit struct {
	label string
	text  string
}

// Run extracts facts from every document, in document order then chunk
// order. Chunks are processed by a bounded worker pool; results land in
// per-chunk slots and are flattened afterwards, so concurrency never
// reorders output. A chunk whose completion fails after the retry
// budget contributes zero facts and the run continues. The only error
// returned is context cancellation, alongside the facts gathered so
// far.
func (p *Pipeline) Run(ctx context.Context, docs []Document) ([]Fact, error) {
	var units []unit
	for _, doc := range docs {
		chunks := chunker.Chunk(doc.Text, p.cfg.MaxChars)
		total := len(chunks)
		if p.cfg.SampleLimit > 0 && len(chunks) > p.cfg.SampleLimit {
			chunks = chunks[:p.cfg.SampleLimit]
		}
		slog.Info("extract: document chunked",
			"label", doc.Label,
			"chunks", total,
			"retained", len(chunks),
		)
		for i, ch := range chunks {
			units = append(units, unit{
				label: fmt.Sprintf("%s - chunk %d", doc.Label, i+1),
				text:  ch,
			})
		}
	}

	start := time.Now()
	results := make([][]Fact, len(units))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Concurrency)

	for i, u := range units {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, u unit) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = p.extractChunk(ctx, u)
		}(i, u)
	}
	wg.Wait()

	var facts []Fact
	for _, r := range results {
		facts = append(facts, r...)
	}

	slog.Info("extract: run complete",
		"documents", len(docs),
		"chunks", len(units),
		"facts", len(facts),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return facts, ctx.Err()
}

// extractChunk runs one prompt-complete-parse round for a unit.
func (p *Pipeline) extractChunk(ctx context.Context, u unit) []Fact {
	prompt := BuildExtractionPrompt(u.text, u.label)

	out, err := Complete(ctx, p.provider, p.cfg.Model, p.cfg.Temperature, prompt)
	if err != nil {
		slog.Warn("extract: chunk failed", "label", u.label, "error", err)
		return nil
	}

	res := ParseFacts(out, u.label)
	if res.Tier != TierStrict {
		slog.Warn("extract: degraded parse", "label", u.label, "tier", res.Tier.String())
	}
	return res.Facts
}
