package repository

import (
	"context"

	"github.com/vocab-trainer/internal/models"
	"gorm.io/gorm"
)

// ChatRepository handles chat history data access. A conversation is the
// append-only log of one (user, model) pair.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *ChatRepository) WithTx(tx *gorm.DB) *ChatRepository {
	return &ChatRepository{db: tx}
}

// Create appends a message
func (r *ChatRepository) Create(ctx context.Context, msg *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// Recent returns up to limit messages of one conversation, newest first
func (r *ChatRepository) Recent(ctx context.Context, userID uint, model string, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND model = ?", userID, model).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&msgs)
	return msgs, result.Error
}

// History returns the user's messages in chronological order. An empty
// model returns every conversation.
func (r *ChatRepository) History(ctx context.Context, userID uint, model string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if model != "" {
		q = q.Where("model = ?", model)
	}
	result := q.Order("timestamp ASC").Order("id ASC").Find(&msgs)
	return msgs, result.Error
}

// Clear deletes the user's messages, for one model or all of them
func (r *ChatRepository) Clear(ctx context.Context, userID uint, model string) (int64, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if model != "" {
		q = q.Where("model = ?", model)
	}
	result := q.Delete(&models.ChatMessage{})
	return result.RowsAffected, result.Error
}
