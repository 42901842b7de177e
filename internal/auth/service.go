package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nmorales-dev/localchat-backend/internal/accounts"
	pkgAuth "github.com/nmorales-dev/localchat-backend/pkg/auth"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
	"github.com/nmorales-dev/localchat-backend/pkg/security"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AccountSummary, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
	ChangePassword(ctx context.Context, accountID int64, current, next string) error
}

type accountRepository interface {
	Create(ctx context.Context, dto accounts.CreateAccountDTO) (*models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type sessionManager interface {
	Create(ctx context.Context, record session.Record) (string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type loginRecorder interface {
	RecordLogin(ctx context.Context, accountUUID, ipAddress, userAgent string)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Accounts     accountRepository
	Sessions     sessionManager
	Recorder     loginRecorder
	JWTConfig    config.JWTConfig
	Password     config.PasswordConfig
	DefaultModel string
}

type service struct {
	accounts     accountRepository
	sessions     sessionManager
	recorder     loginRecorder
	jwtCfg       config.JWTConfig
	pwCfg        config.PasswordConfig
	defaultModel string
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		accounts:     params.Accounts,
		sessions:     params.Sessions,
		recorder:     params.Recorder,
		jwtCfg:       params.JWTConfig,
		pwCfg:        params.Password,
		defaultModel: params.DefaultModel,
	}, nil
}

// Register creates a new account with the user role and a fresh chat store
// identifier. The store itself is not created here: it appears on the first
// chat access after login.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AccountSummary, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}
	if !security.MeetsComplexity(req.Password) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"password must be at least 8 characters with upper, lower, digit, and one of @$!%*?&")
	}

	hash, err := security.HashPassword(req.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	account, err := s.accounts.Create(ctx, accounts.CreateAccountDTO{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		ChatUUID:     uuid.NewString(),
	})
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "username or email already taken")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating account")
	}

	summary := summarize(account)
	return &summary, nil
}

// Login authenticates the credentials, opens a server-side session seeded
// with the default model, and returns a signed access token.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	account, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.Create(ctx, session.Record{
		AccountID:     account.ID,
		Username:      account.Username,
		Role:          account.Role,
		SelectedModel: s.defaultModel,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		AccountID: account.ID,
		Username:  account.Username,
		Role:      account.Role,
		JTI:       sessionID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	if s.recorder != nil {
		s.recorder.RecordLogin(ctx, account.ChatUUID, req.IPAddress, req.UserAgent)
	}

	return &LoginResponse{
		Token:         token,
		AccountID:     account.ID,
		Username:      account.Username,
		Role:          account.Role,
		SelectedModel: s.defaultModel,
	}, nil
}

// Logout revokes the server-side session.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// ChangePassword verifies the current password before storing the new one.
func (s *service) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	ok, err := security.VerifyPassword(current, account.PasswordHash)
	if err != nil || !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}
	if !security.MeetsComplexity(next) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"password must be at least 8 characters with upper, lower, digit, and one of @$!%*?&")
	}

	hash, err := security.HashPassword(next, s.pwCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing password")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading account")
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return account, nil
}
