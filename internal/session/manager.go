package session

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"docuchat/internal/rag"
)

// FileRef points the pipeline at one stored document.
type FileRef struct {
	Name string
	Path string
}

// Manager owns the per-user retriever table and the persisted index
// directories under indexRoot. One index exists per user at most; a rebuild
// replaces it wholesale. The mutex guards the table itself; whole operations
// for the same user are last-writer-wins.
type Manager struct {
	mu         sync.RWMutex
	retrievers map[uint]*rag.Retriever

	indexRoot string
	loader    rag.Loader
	chunker   *rag.SemanticChunker
	embedder  rag.Embedder
}

func NewManager(indexRoot string, loader rag.Loader, chunker *rag.SemanticChunker, embedder rag.Embedder) *Manager {
	return &Manager{
		retrievers: make(map[uint]*rag.Retriever),
		indexRoot:  indexRoot,
		loader:     loader,
		chunker:    chunker,
		embedder:   embedder,
	}
}

// LoadAll eagerly restores every persisted per-user index found under the
// root so previously processed users resume chatting after a restart
// without reprocessing. Unreadable directories are skipped with a log line.
func (m *Manager) LoadAll() error {
	entries, err := os.ReadDir(m.indexRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan index root failed: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		userID, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil {
			continue
		}
		index, err := rag.LoadIndex(filepath.Join(m.indexRoot, entry.Name()))
		if err != nil {
			log.Printf("load index for user %d failed: %v", userID, err)
			continue
		}
		// vectors from a different embedding model are not comparable to
		// query vectors from the current one; the user must reprocess
		if index.Model() != "" && index.Model() != m.embedder.Model() {
			log.Printf("index for user %d was built with model %q, current is %q, skipping", userID, index.Model(), m.embedder.Model())
			continue
		}
		m.mu.Lock()
		m.retrievers[uint(userID)] = rag.NewRetriever(index, m.embedder)
		m.mu.Unlock()
		log.Printf("restored index for user %d (%d passages)", userID, index.Len())
	}
	return nil
}

// Process runs the full pipeline over the user's current file set: load each
// file, chunk everything together, build and persist a fresh index, and only
// then swap the served retriever. On any failure the prior retriever, if
// any, keeps serving.
func (m *Manager) Process(ctx context.Context, userID uint, files []FileRef) (int, error) {
	var units []rag.Unit
	for _, file := range files {
		fileUnits, err := m.loader.Load(file.Path)
		if err != nil {
			return 0, fmt.Errorf("loading %s: %w", file.Name, err)
		}
		for i := range fileUnits {
			fileUnits[i].Source = file.Name
		}
		units = append(units, fileUnits...)
	}
	if len(units) == 0 {
		return 0, fmt.Errorf("%w: no documents could be loaded", rag.ErrLoad)
	}

	passages, err := m.chunker.Chunk(ctx, units)
	if err != nil {
		return 0, err
	}

	index, err := rag.BuildIndex(ctx, m.embedder, passages)
	if err != nil {
		return 0, err
	}
	if err := index.Persist(m.userDir(userID)); err != nil {
		return 0, err
	}

	m.mu.Lock()
	m.retrievers[userID] = rag.NewRetriever(index, m.embedder)
	m.mu.Unlock()

	return index.Len(), nil
}

// Retriever returns the served retriever for the user, or nil when the user
// has not processed any files in this process lifetime or a prior one.
func (m *Manager) Retriever(userID uint) *rag.Retriever {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.retrievers[userID]
}

func (m *Manager) Has(userID uint) bool {
	return m.Retriever(userID) != nil
}

// Drop removes the user's in-memory retriever and deletes the persisted
// artifact. Leaving the artifact would resurrect an index for a user with
// zero files on the next restart.
func (m *Manager) Drop(userID uint) error {
	m.mu.Lock()
	delete(m.retrievers, userID)
	m.mu.Unlock()

	if err := os.RemoveAll(m.userDir(userID)); err != nil {
		return fmt.Errorf("remove persisted index failed: %w", err)
	}
	return nil
}

func (m *Manager) userDir(userID uint) string {
	return filepath.Join(m.indexRoot, strconv.FormatUint(uint64(userID), 10))
}
