package accounts

import (
	"context"

	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository exposes account persistence against the shared identity store.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateAccountDTO) (*models.Account, error) {
	account := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// FindByID loads an account by its numeric identifier.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByUsername retrieves the account matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

// List returns every account ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Account, error) {
	var list []models.Account
	if err := r.db.WithContext(ctx).Order("id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ChatUUID resolves the tenant store identifier for an account.
func (r *Repository) ChatUUID(ctx context.Context, accountID int64) (string, error) {
	var account models.Account
	err := r.db.WithContext(ctx).
		Select("chat_uuid").
		First(&account, "id = ?", accountID).Error
	if err != nil {
		return "", err
	}
	return account.ChatUUID, nil
}

// UpdateRole overwrites the account's role.
func (r *Repository) UpdateRole(ctx context.Context, id int64, role enums.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("role", role).Error
}

// UpdatePassword overwrites the stored password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", passwordHash).Error
}

// UpdateProfile applies the non-nil profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, dto UpdateProfileDTO) error {
	changes := dto.changes()
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("id = ?", id).
		Updates(changes).Error
}
