// Package extract turns regulatory document text into structured
// compliance facts via an LLM completion backend.
package extract

// Document is a labeled body of text to extract facts from. Label is
// typically the source filename and becomes part of each fact's
// provenance tag.
type Document struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Fact is one extracted compliance change. Deadline and Penalty are
// pointers so "not mentioned" survives serialization as null rather
// than an empty string.
type Fact struct {
	SourceLabel string   `json:"source_label"`
	Change      string   `json:"change"`
	Affected    []string `json:"affected"`
	Deadline    *string  `json:"deadline"`
	Penalty     *string  `json:"penalty"`
	Impact      string   `json:"impact"`
}
