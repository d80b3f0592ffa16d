package rag

import "errors"

// Pipeline stage sentinels. Each stage wraps its failures with its own
// sentinel so callers can classify errors with errors.Is without depending
// on message text.
var (
	ErrLoad      = errors.New("document load failed")
	ErrChunking  = errors.New("chunking failed")
	ErrEmbedding = errors.New("embedding failed")
	ErrIndex     = errors.New("index failed")
	ErrSynthesis = errors.New("answer synthesis failed")
)
