package models

import "time"

// LoginEvent is an append-only security audit record. The application only
// ever writes these.
type LoginEvent struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountUUID string    `gorm:"column:account_uuid;index;not null" json:"account_uuid"`
	IPAddress   string    `gorm:"column:ip_address" json:"ip_address"`
	UserAgent   string    `gorm:"column:user_agent" json:"user_agent"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
