package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

const (
	// DefaultSearchK is the top-k used when the caller does not specify one.
	DefaultSearchK = 4

	snapshotFile = "index.json"
)

// Index is a searchable collection of passages and their embedding vectors.
// It is immutable after build; rebuilding a user's documents produces a new
// Index that replaces the old one wholesale.
type Index struct {
	passages  []Passage
	vectors   [][]float32
	dimension int
	model     string
}

// SearchResult pairs a passage with its similarity score.
type SearchResult struct {
	Passage Passage
	Score   float32
}

// BuildIndex embeds all passages in batches and constructs a brute-force
// cosine index. Exact nearest neighbor is fine at the scale of a handful of
// documents.
func BuildIndex(ctx context.Context, embedder Embedder, passages []Passage) (*Index, error) {
	if len(passages) == 0 {
		return nil, fmt.Errorf("%w: no passages to index", ErrIndex)
	}

	texts := make([]string, len(passages))
	for i := range passages {
		texts[i] = passages[i].Text
	}

	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
		}
		vectors = append(vectors, batch...)
	}
	if len(vectors) != len(passages) {
		return nil, fmt.Errorf("%w: embedding count mismatch", ErrIndex)
	}

	dimension := len(vectors[0])
	for i := range vectors {
		if len(vectors[i]) != dimension {
			return nil, fmt.Errorf("%w: inconsistent embedding dimension", ErrIndex)
		}
	}

	return &Index{
		passages:  passages,
		vectors:   vectors,
		dimension: dimension,
		model:     embedder.Model(),
	}, nil
}

// Len returns the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Model returns the name of the embedding model the vectors were produced
// with. Empty for snapshots written before the model was recorded.
func (ix *Index) Model() string {
	return ix.model
}

// Search returns the k most similar passages to the query vector, highest
// score first. Ties keep insertion order thanks to the stable sort.
func (ix *Index) Search(query []float32, k int) []SearchResult {
	if k <= 0 {
		k = DefaultSearchK
	}

	results := make([]SearchResult, len(ix.passages))
	for i := range ix.passages {
		results[i] = SearchResult{
			Passage: ix.passages[i],
			Score:   cosineSimilarity(query, ix.vectors[i]),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

type indexSnapshot struct {
	Model     string      `json:"model,omitempty"`
	Dimension int         `json:"dimension"`
	Passages  []Passage   `json:"passages"`
	Vectors   [][]float32 `json:"vectors"`
}

// Persist writes the index state into dir so a restarted process can serve
// the same search results without re-embedding.
func (ix *Index) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create index dir: %v", ErrIndex, err)
	}

	payload, err := json.Marshal(indexSnapshot{
		Model:     ix.model,
		Dimension: ix.dimension,
		Passages:  ix.passages,
		Vectors:   ix.vectors,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal snapshot: %v", ErrIndex, err)
	}

	if err := os.WriteFile(filepath.Join(dir, snapshotFile), payload, 0o644); err != nil {
		return fmt.Errorf("%w: write snapshot: %v", ErrIndex, err)
	}
	return nil
}

// LoadIndex restores a persisted index from dir.
func LoadIndex(dir string) (*Index, error) {
	raw, err := os.ReadFile(filepath.Join(dir, snapshotFile))
	if err != nil {
		return nil, fmt.Errorf("%w: read snapshot: %v", ErrIndex, err)
	}

	var snap indexSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: parse snapshot: %v", ErrIndex, err)
	}
	if len(snap.Passages) == 0 || len(snap.Passages) != len(snap.Vectors) {
		return nil, fmt.Errorf("%w: corrupt snapshot in %s", ErrIndex, dir)
	}

	return &Index{
		passages:  snap.Passages,
		vectors:   snap.Vectors,
		dimension: snap.Dimension,
		model:     snap.Model,
	}, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
