package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	AccountID int64
	Username  string
	Role      enums.Role
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients. The jti in
// RegisteredClaims keys the server-side session record in Redis; the role is
// carried for observability only and authorization re-reads the session.
type AccessTokenClaims struct {
	AccountID int64      `json:"account_id"`
	Username  string     `json:"username"`
	Role      enums.Role `json:"role"`
	jwt.RegisteredClaims
}
