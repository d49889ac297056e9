package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/scholar-hub-api/internal/models"
)

// ChatRepository persists relayed chat turns for session history.
type ChatRepository interface {
	SaveBatch(ctx context.Context, messages []models.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository constructs a chat repository backed by GORM.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) SaveBatch(ctx context.Context, messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&messages).Error
}

func (r *chatRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Reverse to chronological order ascending for clients.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
