package auth

import (
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// RegisterRequest carries the sign-up form.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// LoginRequest carries credentials plus the client metadata recorded in the
// security audit trail.
type LoginRequest struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResponse is handed back to the controller on success.
type LoginResponse struct {
	Token         string
	AccountID     int64
	Username      string
	Role          enums.Role
	SelectedModel string
}

// AccountSummary is the public projection of an account.
type AccountSummary struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     enums.Role `json:"role"`
}

func summarize(account *models.Account) AccountSummary {
	return AccountSummary{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
	}
}
