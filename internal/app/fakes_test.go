package app

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"docuchat/internal/model"
	"docuchat/internal/rag"
	"docuchat/internal/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Document{}, &model.ChatEntry{}))
	return db
}

// fixedLoader returns the same units for every path.
type fixedLoader struct {
	units []rag.Unit
	err   error
}

func (l *fixedLoader) Load(string) ([]rag.Unit, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.units, nil
}

type flatEmbedder struct{}

func (flatEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (flatEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (flatEmbedder) Model() string { return "flat-test" }

// scriptedGenerator returns a fixed answer and remembers the last prompt.
type scriptedGenerator struct {
	answer     string
	err        error
	lastPrompt string
}

func (g *scriptedGenerator) Complete(_ context.Context, _, prompt string) (string, error) {
	g.lastPrompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func newTestManager(t *testing.T, loader rag.Loader) *session.Manager {
	t.Helper()
	embedder := flatEmbedder{}
	return session.NewManager(t.TempDir(), loader, rag.NewSemanticChunker(embedder), embedder)
}

// memoryHistoryCache is an in-process stand-in for the Redis-backed cache.
type memoryHistoryCache struct {
	entries map[uint][]model.ChatEntry
	dirty   map[uint]bool
}

func newMemoryHistoryCache() *memoryHistoryCache {
	return &memoryHistoryCache{
		entries: make(map[uint][]model.ChatEntry),
		dirty:   make(map[uint]bool),
	}
}

func (c *memoryHistoryCache) GetHistory(_ context.Context, userID uint) ([]model.ChatEntry, bool, error) {
	entries, ok := c.entries[userID]
	return entries, ok, nil
}

func (c *memoryHistoryCache) SetHistory(_ context.Context, userID uint, entries []model.ChatEntry) error {
	c.entries[userID] = entries
	return nil
}

func (c *memoryHistoryCache) DeleteHistory(_ context.Context, userID uint) error {
	delete(c.entries, userID)
	return nil
}

func (c *memoryHistoryCache) MarkDirty(_ context.Context, userID uint) error {
	c.dirty[userID] = true
	return nil
}

func (c *memoryHistoryCache) IsDirty(_ context.Context, userID uint) (bool, error) {
	return c.dirty[userID], nil
}
