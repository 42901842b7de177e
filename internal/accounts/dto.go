package accounts

import (
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// CreateAccountDTO carries the fields needed to insert a new account.
type CreateAccountDTO struct {
	Username     string
	Email        string
	PasswordHash string
	Role         enums.Role
	ChatUUID     string
}

func (d CreateAccountDTO) ToModel() *models.Account {
	role := d.Role
	if role == "" {
		role = enums.RoleUser
	}
	return &models.Account{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         role,
		ChatUUID:     d.ChatUUID,
	}
}

// UpdateProfileDTO updates the optional profile fields. Nil pointers leave the
// stored value untouched.
type UpdateProfileDTO struct {
	Phone    *string
	Birthday *string
	City     *string
	Country  *string
}

func (d UpdateProfileDTO) changes() map[string]any {
	changes := map[string]any{}
	if d.Phone != nil {
		changes["phone"] = *d.Phone
	}
	if d.Birthday != nil {
		changes["birthday"] = *d.Birthday
	}
	if d.City != nil {
		changes["city"] = *d.City
	}
	if d.Country != nil {
		changes["country"] = *d.Country
	}
	return changes
}
