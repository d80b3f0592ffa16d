package app

import (
	"context"
	"errors"
	"strings"

	"docuchat/internal/model"
	"docuchat/internal/rag"
	"docuchat/internal/repository"
	"docuchat/internal/session"
)

var (
	ErrMessageEmpty  = errors.New("message is required")
	ErrNoRetriever   = errors.New("please upload and process files first")
	ErrEntryNotFound = errors.New("history entry not found")
)

// HistoryCache caches a user's full history between writes. A nil cache
// disables caching.
type HistoryCache interface {
	GetHistory(ctx context.Context, userID uint) ([]model.ChatEntry, bool, error)
	SetHistory(ctx context.Context, userID uint, entries []model.ChatEntry) error
	DeleteHistory(ctx context.Context, userID uint) error
	MarkDirty(ctx context.Context, userID uint) error
	IsDirty(ctx context.Context, userID uint) (bool, error)
}

// ChatService answers questions against the user's processed index and owns
// the chat history records.
type ChatService struct {
	entryRepo    *repository.ChatEntryRepository
	docRepo      *repository.DocumentRepository
	manager      *session.Manager
	synthesizer  *rag.Synthesizer
	historyCache HistoryCache
}

func NewChatService(
	entryRepo *repository.ChatEntryRepository,
	docRepo *repository.DocumentRepository,
	manager *session.Manager,
	synthesizer *rag.Synthesizer,
	historyCache HistoryCache,
) *ChatService {
	return &ChatService{
		entryRepo:    entryRepo,
		docRepo:      docRepo,
		manager:      manager,
		synthesizer:  synthesizer,
		historyCache: historyCache,
	}
}

// Send runs one chat turn: retrieve, synthesize, append to history. The
// entry is written synchronously so an immediate history read returns it.
func (s *ChatService) Send(ctx context.Context, userID uint, message string) (*model.ChatEntry, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrMessageEmpty
	}

	retriever := s.manager.Retriever(userID)
	if retriever == nil {
		return nil, ErrNoRetriever
	}

	passages, err := retriever.Retrieve(ctx, message)
	if err != nil {
		return nil, err
	}

	recent, err := s.entryRepo.ListRecent(userID, rag.HistoryWindow)
	if err != nil {
		return nil, err
	}
	history := make([]rag.Exchange, len(recent))
	for i := range recent {
		history[i] = rag.Exchange{Question: recent[i].Question, Answer: recent[i].Answer}
	}

	answer, sources, err := s.synthesizer.Answer(ctx, message, passages, history)
	if err != nil {
		return nil, err
	}

	entry := &model.ChatEntry{
		UserID:   userID,
		Question: message,
		Answer:   answer,
	}
	entry.SetSources(sources)
	if err := s.entryRepo.Create(entry); err != nil {
		return nil, err
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, userID)
		_ = s.historyCache.DeleteHistory(ctx, userID)
	}
	return entry, nil
}

// History returns the user's entries most recent first, read through the
// cache when it is clean.
func (s *ChatService) History(ctx context.Context, userID uint) ([]model.ChatEntry, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, userID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, userID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	entries, err := s.entryRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}

	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, userID); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, userID, entries)
		}
	}
	return entries, nil
}

func (s *ChatService) ClearHistory(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if err := s.entryRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, userID)
	}
	return nil
}

func (s *ChatService) DeleteEntry(ctx context.Context, userID, entryID uint) error {
	if userID == 0 || entryID == 0 {
		return ErrInvalidInput
	}
	entry, err := s.entryRepo.GetByIDAndUserID(entryID, userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}
	if err := s.entryRepo.DeleteByIDAndUserID(entryID, userID); err != nil {
		return err
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, userID)
		_ = s.historyCache.DeleteHistory(ctx, userID)
	}
	return nil
}

// UserStatus summarizes where the user sits in the upload/process/chat
// lifecycle.
type UserStatus struct {
	HasFiles     bool  `json:"has_files"`
	HasRetriever bool  `json:"has_retriever"`
	HasHistory   bool  `json:"has_history"`
	FileCount    int64 `json:"file_count"`
}

func (s *ChatService) Status(ctx context.Context, userID uint) (*UserStatus, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	fileCount, err := s.docRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	historyCount, err := s.entryRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	return &UserStatus{
		HasFiles:     fileCount > 0,
		HasRetriever: s.manager.Has(userID),
		HasHistory:   historyCount > 0,
		FileCount:    fileCount,
	}, nil
}
