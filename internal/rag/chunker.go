package rag

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	defaultBreakpointPercentile = 95.0
	defaultMaxPassageRunes      = 2000
	embeddingBatchSize          = 10 // DashScope and similar APIs often limit batch size
)

var sentencePattern = regexp.MustCompile(`(?m)(?U)[^.!?]+[.!?]+`)

// SemanticChunker splits extracted text into coherent passages by detecting
// embedding-distance discontinuities between adjacent sentence windows
// instead of cutting at a fixed length. Output is deterministic for a fixed
// embedder.
type SemanticChunker struct {
	embedder             Embedder
	breakpointPercentile float64
	maxPassageRunes      int
}

func NewSemanticChunker(embedder Embedder) *SemanticChunker {
	return &SemanticChunker{
		embedder:             embedder,
		breakpointPercentile: defaultBreakpointPercentile,
		maxPassageRunes:      defaultMaxPassageRunes,
	}
}

type sentence struct {
	text string
	unit int
}

// Chunk consumes the full ordered unit sequence from all of a user's
// documents. A passage spanning several units inherits the first unit's
// source and page for attribution.
func (c *SemanticChunker) Chunk(ctx context.Context, units []Unit) ([]Passage, error) {
	var sentences []sentence
	for i := range units {
		for _, s := range splitSentences(units[i].Text) {
			sentences = append(sentences, sentence{text: s, unit: i})
		}
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("%w: no text in input units", ErrChunking)
	}
	if len(sentences) == 1 {
		return []Passage{c.passageFrom(units, sentences)}, nil
	}

	breaks, err := c.breakpoints(ctx, sentences)
	if err != nil {
		return nil, err
	}

	var passages []Passage
	start := 0
	runes := 0
	for i := range sentences {
		runes += len([]rune(sentences[i].text))
		atBreak := breaks[i]
		overSize := runes >= c.maxPassageRunes
		if atBreak || overSize || i == len(sentences)-1 {
			passages = append(passages, c.passageFrom(units, sentences[start:i+1]))
			start = i + 1
			runes = 0
		}
	}
	return passages, nil
}

// breakpoints returns, for each sentence index i, whether a passage boundary
// falls immediately after sentence i. Boundaries sit where the cosine
// distance between consecutive sentence windows exceeds the configured
// percentile of all such distances.
func (c *SemanticChunker) breakpoints(ctx context.Context, sentences []sentence) ([]bool, error) {
	windows := make([]string, len(sentences))
	for i := range sentences {
		var parts []string
		if i > 0 {
			parts = append(parts, sentences[i-1].text)
		}
		parts = append(parts, sentences[i].text)
		if i < len(sentences)-1 {
			parts = append(parts, sentences[i+1].text)
		}
		windows[i] = strings.Join(parts, " ")
	}

	vectors := make([][]float32, 0, len(windows))
	for i := 0; i < len(windows); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(windows) {
			end = len(windows)
		}
		batch, err := c.embedder.EmbedBatch(ctx, windows[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(windows) {
		return nil, fmt.Errorf("%w: window embedding count mismatch", ErrChunking)
	}

	distances := make([]float64, len(sentences)-1)
	for i := range distances {
		distances[i] = 1 - float64(cosineSimilarity(vectors[i], vectors[i+1]))
	}
	threshold := percentile(distances, c.breakpointPercentile)

	breaks := make([]bool, len(sentences))
	for i, d := range distances {
		if d > threshold {
			breaks[i] = true
		}
	}
	return breaks, nil
}

func (c *SemanticChunker) passageFrom(units []Unit, group []sentence) Passage {
	texts := make([]string, len(group))
	for i := range group {
		texts[i] = group[i].text
	}
	first := units[group[0].unit]
	return Passage{
		Text:   strings.Join(texts, " "),
		Source: first.Source,
		Page:   first.Page,
	}
}

func splitSentences(text string) []string {
	var sentences []string
	matched := 0
	for _, loc := range sentencePattern.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		matched = loc[1]
	}
	// trailing text without terminal punctuation still counts as a sentence
	if tail := strings.TrimSpace(text[matched:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// percentile interpolates linearly between the two nearest ranks so the
// threshold falls strictly below the maximum for non-degenerate inputs.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
