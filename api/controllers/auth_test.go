package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/internal/auth"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
)

type stubAuthService struct {
	registerResp *auth.AccountSummary
	loginResp    *auth.LoginResponse
	loginReq     auth.LoginRequest
	loggedOut    []string
	err          error
}

func (s *stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AccountSummary, error) {
	return s.registerResp, s.err
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.loginReq = req
	return s.loginResp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return s.err
}

func (s *stubAuthService) ChangePassword(ctx context.Context, accountID int64, current, next string) error {
	return s.err
}

func TestAuthRegisterSuccess(t *testing.T) {
	svc := &stubAuthService{registerResp: &auth.AccountSummary{ID: 7, Username: "alice", Role: enums.RoleUser}}
	handler := AuthRegister(svc, nil)

	payload := []byte(`{"username":"alice","email":"a@b.com","password":"123@Root!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var envelope struct {
		Data auth.AccountSummary `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != 7 || envelope.Data.Username != "alice" {
		t.Fatalf("unexpected body: %+v", envelope.Data)
	}
}

func TestAuthRegisterInvalidBody(t *testing.T) {
	handler := AuthRegister(&stubAuthService{}, nil)

	payload := []byte(`{"username":"alice","email":"not-an-email","password":"123@Root!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginPassesClientMetadata(t *testing.T) {
	svc := &stubAuthService{loginResp: &auth.LoginResponse{Token: "tok", AccountID: 7, Username: "alice", Role: enums.RoleUser, SelectedModel: "llama3:8b"}}
	handler := AuthLogin(svc, nil)

	payload := []byte(`{"username":"alice","password":"123@Root!"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "curl/8")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.loginReq.IPAddress != "203.0.113.9" || svc.loginReq.UserAgent != "curl/8" {
		t.Fatalf("client metadata not forwarded: %+v", svc.loginReq)
	}

	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["token"] != "tok" || envelope.Data["selected_model"] != "llama3:8b" {
		t.Fatalf("unexpected body: %+v", envelope.Data)
	}
}

func TestAuthLoginRejected(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
	handler := AuthLogin(svc, nil)

	payload := []byte(`{"username":"alice","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLogout(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 7, "alice", enums.RoleUser, "session-1"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "session-1" {
		t.Fatalf("logout calls = %v", svc.loggedOut)
	}
}

func TestAuthLogoutWithoutSession(t *testing.T) {
	handler := AuthLogout(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
