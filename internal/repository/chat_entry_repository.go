package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"docuchat/internal/model"
)

type ChatEntryRepository struct {
	db *gorm.DB
}

func NewChatEntryRepository(db *gorm.DB) *ChatEntryRepository {
	return &ChatEntryRepository{db: db}
}

func (r *ChatEntryRepository) Create(entry *model.ChatEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create chat entry failed: %w", err)
	}
	return nil
}

// ListByUserID returns the user's entries in creation order (oldest first).
func (r *ChatEntryRepository) ListByUserID(userID uint) ([]model.ChatEntry, error) {
	var entries []model.ChatEntry
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list chat entries failed: %w", err)
	}
	return entries, nil
}

// ListRecent returns at most limit entries, oldest first among the most
// recent ones, for building conversational context.
func (r *ChatEntryRepository) ListRecent(userID uint, limit int) ([]model.ChatEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	var entries []model.ChatEntry
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list recent chat entries failed: %w", err)
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

func (r *ChatEntryRepository) GetByIDAndUserID(id, userID uint) (*model.ChatEntry, error) {
	var entry model.ChatEntry
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query chat entry failed: %w", err)
	}
	return &entry, nil
}

func (r *ChatEntryRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.ChatEntry{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chat entries failed: %w", err)
	}
	return count, nil
}

func (r *ChatEntryRepository) DeleteByIDAndUserID(id, userID uint) error {
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&model.ChatEntry{}).Error; err != nil {
		return fmt.Errorf("delete chat entry failed: %w", err)
	}
	return nil
}

func (r *ChatEntryRepository) DeleteByUserID(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.ChatEntry{}).Error; err != nil {
		return fmt.Errorf("delete chat entries failed: %w", err)
	}
	return nil
}
