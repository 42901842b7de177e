package models

import (
	"time"

	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// RoleChange records an admin panel role mutation in the diagnostics store.
type RoleChange struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorAccountID int64      `gorm:"column:actor_account_id;not null" json:"actor_account_id"`
	TargetID       int64      `gorm:"column:target_account_id;not null" json:"target_account_id"`
	OldRole        enums.Role `gorm:"column:old_role" json:"old_role"`
	NewRole        enums.Role `gorm:"column:new_role" json:"new_role"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
