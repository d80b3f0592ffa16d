package rag

import (
	"context"
	"fmt"
)

// Unit is one extracted text unit (a PDF page) tagged with the display name
// of the document it came from. Page is 1-based; 0 means unknown.
type Unit struct {
	Text   string
	Source string
	Page   int
}

// Passage is a semantically coherent chunk of extracted text with
// attribution metadata. Passages are immutable after creation.
type Passage struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   int    `json:"page,omitempty"`
}

// Label renders the source attribution shown to users, e.g.
// "report.pdf (page 3)".
func (p Passage) Label() string {
	if p.Page > 0 {
		return fmt.Sprintf("%s (page %d)", p.Source, p.Page)
	}
	return p.Source
}

// Embedder maps text to fixed-dimension vectors. Equal inputs must produce
// equal vectors for a given model; similarity search depends on it. Model
// names the backing embedding model so persisted vectors can be rejected
// when the configured model changes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Generator produces a completion for a system instruction plus prompt.
type Generator interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
