package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"gorm.io/gorm"
)

type accountRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdateRole(ctx context.Context, id int64, role enums.Role) error
}

type roleChangeRecorder interface {
	RecordRoleChange(ctx context.Context, actorID, targetID int64, oldRole, newRole enums.Role)
}

// Service backs the admin panel operations.
type Service struct {
	accounts accountRepository
	recorder roleChangeRecorder
}

// NewService constructs the admin service.
func NewService(accounts accountRepository, recorder roleChangeRecorder) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &Service{accounts: accounts, recorder: recorder}, nil
}

// AccountRow is the admin panel projection of one account.
type AccountRow struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
	ChatUUID string     `json:"chat_uuid"`
}

// ListAccounts returns every account for the panel.
func (s *Service) ListAccounts(ctx context.Context) ([]AccountRow, error) {
	list, err := s.accounts.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing accounts")
	}
	rows := make([]AccountRow, 0, len(list))
	for _, account := range list {
		rows = append(rows, AccountRow{
			ID:       account.ID,
			Username: account.Username,
			Email:    account.Email,
			Role:     account.Role,
			ChatUUID: account.ChatUUID,
		})
	}
	return rows, nil
}

// UpdateRole changes an account's role. The bootstrap admin account is
// pinned: its role can never leave admin, not even by another admin. Every
// successful change lands in the diagnostics audit trail.
func (s *Service) UpdateRole(ctx context.Context, actorID, targetID int64, newRole enums.Role) (*AccountRow, error) {
	if !newRole.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown role").
			WithDetails(map[string]any{"role": string(newRole)})
	}

	target, err := s.accounts.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	if target.IsPrimordialAdmin() && newRole != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "the root admin role cannot be changed")
	}

	oldRole := target.Role
	if oldRole != newRole {
		if err := s.accounts.UpdateRole(ctx, targetID, newRole); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating role")
		}
		if s.recorder != nil {
			s.recorder.RecordRoleChange(ctx, actorID, targetID, oldRole, newRole)
		}
	}

	return &AccountRow{
		ID:       target.ID,
		Username: target.Username,
		Email:    target.Email,
		Role:     newRole,
		ChatUUID: target.ChatUUID,
	}, nil
}
