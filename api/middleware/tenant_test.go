package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/nmorales-dev/localchat-backend/internal/audit"
	"github.com/nmorales-dev/localchat-backend/internal/tenant"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
	"github.com/nmorales-dev/localchat-backend/pkg/db/models"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

type stubResolver map[int64]string

func (s stubResolver) ChatUUID(ctx context.Context, accountID int64) (string, error) {
	if u, ok := s[accountID]; ok {
		return u, nil
	}
	return "", context.Canceled
}

func TestTenantScopeInjectsAndTearsDown(t *testing.T) {
	provisioner := tenant.NewProvisioner(config.StorageConfig{DataDir: t.TempDir()}, nil)
	resolver := stubResolver{7: uuid.NewString()}

	var scope *tenant.Scope
	handler := TenantScope(resolver, provisioner, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope = TenantScopeFromContext(r.Context())
		if scope == nil {
			t.Fatal("expected scope in context")
		}
		conn, err := scope.Chat(r.Context())
		if err != nil {
			t.Fatalf("chat: %v", err)
		}
		if err := conn.Create(&models.Conversation{ID: "c1", Title: "New Chat"}).Error; err != nil {
			t.Fatalf("insert: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), 7, "alice", enums.RoleUser, "s1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("got %d", resp.Code)
	}
	// Closed by middleware; a second close is a no-op.
	if err := scope.Close(); err != nil {
		t.Errorf("close after teardown: %v", err)
	}
}

func TestTenantScopeWithoutIdentity(t *testing.T) {
	provisioner := tenant.NewProvisioner(config.StorageConfig{DataDir: t.TempDir()}, nil)
	handler := TenantScope(stubResolver{}, provisioner, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope := TenantScopeFromContext(r.Context())
		if _, err := scope.Chat(r.Context()); err != tenant.ErrNoIdentity {
			t.Errorf("expected ErrNoIdentity, got %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("got %d", resp.Code)
	}
}

type capturingRecorder struct {
	events []audit.ErrorEventDTO
}

func (c *capturingRecorder) RecordError(ctx context.Context, dto audit.ErrorEventDTO) {
	c.events = append(c.events, dto)
}

func TestErrorAuditCapturesServerFailures(t *testing.T) {
	rec := &capturingRecorder{}
	resolver := stubResolver{7: "tenant-uuid"}
	handler := ErrorAudit(rec, resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil)
	req = req.WithContext(WithIdentity(req.Context(), 7, "alice", enums.RoleUser, "s1"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if len(rec.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(rec.events))
	}
	event := rec.events[0]
	if event.StatusCode != http.StatusBadGateway || event.URL != "/api/v1/chat" {
		t.Errorf("event = %+v", event)
	}
	if event.AccountUUID == nil || *event.AccountUUID != "tenant-uuid" {
		t.Errorf("account uuid = %v", event.AccountUUID)
	}
}

func TestErrorAuditIgnoresClientErrorStatuses(t *testing.T) {
	rec := &capturingRecorder{}
	handler := ErrorAudit(rec, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if len(rec.events) != 0 {
		t.Fatalf("expected no events, got %d", len(rec.events))
	}
}
