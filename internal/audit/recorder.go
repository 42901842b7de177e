package audit

import (
	"context"

	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	"github.com/nmorales-dev/localchat-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrorEventDTO captures a server failure at the request boundary.
type ErrorEventDTO struct {
	AccountUUID *string
	Method      string
	URL         string
	IPAddress   string
	StatusCode  int
	Message     string
}

// Recorder appends audit rows to the security and diagnostics stores. Every
// write is best-effort: a failed audit insert is logged and swallowed so it
// can never fail the request that triggered it.
type Recorder struct {
	security *gorm.DB
	admin    *gorm.DB
	logg     *logger.Logger
}

// NewRecorder binds the recorder to the security and admin stores.
func NewRecorder(security, admin *gorm.DB, logg *logger.Logger) *Recorder {
	return &Recorder{security: security, admin: admin, logg: logg}
}

// RecordLogin appends a login event to the security store.
func (r *Recorder) RecordLogin(ctx context.Context, accountUUID, ipAddress, userAgent string) {
	if r == nil || r.security == nil {
		return
	}
	event := models.LoginEvent{
		AccountUUID: accountUUID,
		IPAddress:   ipAddress,
		UserAgent:   userAgent,
	}
	if err := r.security.WithContext(ctx).Create(&event).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, "audit.login_event.write", err)
	}
}

// RecordError appends a diagnostics row for a failed request.
func (r *Recorder) RecordError(ctx context.Context, dto ErrorEventDTO) {
	if r == nil || r.admin == nil {
		return
	}
	event := models.ErrorEvent{
		AccountUUID: dto.AccountUUID,
		Method:      dto.Method,
		URL:         dto.URL,
		IPAddress:   dto.IPAddress,
		StatusCode:  dto.StatusCode,
		Message:     dto.Message,
	}
	if err := r.admin.WithContext(ctx).Create(&event).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, "audit.error_event.write", err)
	}
}

// RecordRoleChange appends an admin panel role mutation.
func (r *Recorder) RecordRoleChange(ctx context.Context, actorID, targetID int64, oldRole, newRole enums.Role) {
	if r == nil || r.admin == nil {
		return
	}
	change := models.RoleChange{
		ActorAccountID: actorID,
		TargetID:       targetID,
		OldRole:        oldRole,
		NewRole:        newRole,
	}
	if err := r.admin.WithContext(ctx).Create(&change).Error; err != nil && r.logg != nil {
		r.logg.Error(ctx, "audit.role_change.write", err)
	}
}
