package rag

import (
	"context"
	"fmt"
)

// Retriever wraps an Index with the fixed retrieval policy: similarity
// search, top 4, scores dropped.
type Retriever struct {
	index    *Index
	embedder Embedder
}

func NewRetriever(index *Index, embedder Embedder) *Retriever {
	return &Retriever{index: index, embedder: embedder}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Passage, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	results := r.index.Search(vec, DefaultSearchK)
	passages := make([]Passage, len(results))
	for i := range results {
		passages[i] = results[i].Passage
	}
	return passages, nil
}
