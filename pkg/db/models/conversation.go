package models

import "time"

// DefaultConversationTitle is the placeholder assigned on creation.
const DefaultConversationTitle = "New Chat"

// Conversation is a message thread inside one tenant chat store.
type Conversation struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
