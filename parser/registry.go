package parser

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Registry maps file extensions to parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a registry with the built-in parsers registered.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]Parser)}
	for _, p := range []Parser{&PDFParser{}, &TextParser{}, &XLSXParser{}} {
		for _, f := range p.SupportedFormats() {
			r.parsers[f] = p
		}
	}
	return r
}

// Get returns the parser registered for a format.
func (r *Registry) Get(format string) (Parser, error) {
	p, ok := r.parsers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no parser for format: %s", format)
	}
	return p, nil
}

// Register adds or replaces the parser for a format.
func (r *Registry) Register(format string, p Parser) {
	r.parsers[strings.ToLower(format)] = p
}

// Formats returns the registered extensions.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for f := range r.parsers {
		out = append(out, f)
	}
	return out
}

// ExtractText parses a file and returns its text, degrading every
// failure to an empty string. The pipeline treats unreadable documents
// as empty rather than aborting a batch.
func (r *Registry) ExtractText(ctx context.Context, path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	p, err := r.Get(ext)
	if err != nil {
		slog.Warn("parser: unsupported format", "path", path, "format", ext)
		return ""
	}
	res, err := p.Parse(ctx, path)
	if err != nil {
		slog.Warn("parser: extraction failed", "path", path, "error", err)
		return ""
	}
	return res.Text
}
