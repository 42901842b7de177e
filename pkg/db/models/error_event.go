package models

import "time"

// ErrorEvent is an append-only diagnostics record written at the outermost
// request boundary for server failures.
type ErrorEvent struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountUUID *string   `gorm:"column:account_uuid" json:"account_uuid,omitempty"`
	Method      string    `json:"method"`
	URL         string    `json:"url"`
	IPAddress   string    `gorm:"column:ip_address" json:"ip_address"`
	StatusCode  int       `gorm:"column:status_code" json:"status_code"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
