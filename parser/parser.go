// Package parser turns regulatory document files into plain text for
// the extraction pipeline.
package parser

import "context"

// Result is what a parser produces from a document file.
type Result struct {
	Text   string // Full extracted text
	Method string // "native"
	Pages  int    // Page or sheet count where the format has them
}

// Parser can parse a specific document format.
type Parser interface {
	Parse(ctx context.Context, path string) (*Result, error)
	SupportedFormats() []string
}
