package models

import (
	"time"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// Message is one chat turn half inside a tenant chat store. Rows are
// append-only; history reconstruction orders by CreatedAt ascending.
type Message struct {
	ID             int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID string            `gorm:"index;not null" json:"conversation_id"`
	Role           enums.MessageRole `gorm:"not null" json:"role"`
	Content        string            `gorm:"not null" json:"content"`
	CreatedAt      time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}
