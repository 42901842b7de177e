package models

import (
	"time"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// PrimordialAdminID is the account whose role can never leave admin.
const PrimordialAdminID int64 = 1

// Account is the canonical identity record in the shared identity store.
// ChatUUID names the account's private chat store and never changes once
// assigned.
type Account struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.Role `gorm:"not null;default:user" json:"role"`
	ChatUUID     string     `gorm:"column:chat_uuid;uniqueIndex;not null" json:"chat_uuid"`
	Phone        *string    `json:"phone,omitempty"`
	Birthday     *string    `json:"birthday,omitempty"`
	City         *string    `json:"city,omitempty"`
	Country      *string    `json:"country,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPrimordialAdmin reports whether this is the bootstrap admin account.
func (a Account) IsPrimordialAdmin() bool {
	return a.ID == PrimordialAdminID
}
