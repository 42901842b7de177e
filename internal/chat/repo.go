package chat

import (
	"context"

	"github.com/google/uuid"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository persists conversations and messages inside one tenant chat
// store. It is stateless: the request-scoped connection comes in per call
// because each request may address a different tenant file.
type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// CreateConversation inserts a new thread with the default title.
func (r *Repository) CreateConversation(ctx context.Context, conn *gorm.DB, title string) (*models.Conversation, error) {
	if title == "" {
		title = models.DefaultConversationTitle
	}
	convo := &models.Conversation{
		ID:    uuid.NewString(),
		Title: title,
	}
	if err := conn.WithContext(ctx).Create(convo).Error; err != nil {
		return nil, err
	}
	return convo, nil
}

// ListConversations returns threads newest first. A positive limit caps the
// page size; zero means unbounded.
func (r *Repository) ListConversations(ctx context.Context, conn *gorm.DB, limit int) ([]models.Conversation, error) {
	query := conn.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var list []models.Conversation
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// GetConversation loads one thread by id.
func (r *Repository) GetConversation(ctx context.Context, conn *gorm.DB, id string) (*models.Conversation, error) {
	var convo models.Conversation
	if err := conn.WithContext(ctx).First(&convo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &convo, nil
}

// RenameConversation updates a thread title.
func (r *Repository) RenameConversation(ctx context.Context, conn *gorm.DB, id, title string) error {
	return conn.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("title", title).Error
}

// DeleteConversation removes a thread and its messages.
func (r *Repository) DeleteConversation(ctx context.Context, conn *gorm.DB, id string) error {
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Conversation{}, "id = ?", id).Error
	})
}

// AppendMessage inserts one turn half.
func (r *Repository) AppendMessage(ctx context.Context, conn *gorm.DB, conversationID string, role enums.MessageRole, content string) (*models.Message, error) {
	msg := &models.Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}
	if err := conn.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns every message of the thread oldest first, which is the
// order the runtime expects the context window in.
func (r *Repository) History(ctx context.Context, conn *gorm.DB, conversationID string) ([]models.Message, error) {
	var history []models.Message
	err := conn.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at asc, id asc").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
