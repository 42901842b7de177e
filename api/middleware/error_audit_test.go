package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmorales-dev/localchat-backend/internal/audit"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

type capturingErrorRecorder struct {
	events []audit.ErrorEventDTO
}

func (c *capturingErrorRecorder) RecordError(ctx context.Context, dto audit.ErrorEventDTO) {
	c.events = append(c.events, dto)
}

type staticChatUUIDResolver struct {
	chatUUID string
}

func (s staticChatUUIDResolver) ChatUUID(ctx context.Context, accountID int64) (string, error) {
	return s.chatUUID, nil
}

func TestErrorAuditAttributesAuthenticatedFailure(t *testing.T) {
	recorder := &capturingErrorRecorder{}
	handler := ErrorAudit(recorder, staticChatUUIDResolver{chatUUID: "chat-uuid-42"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Derives a child context the way the auth middleware does; the
			// outer layer must still learn who the caller was.
			r = r.WithContext(WithIdentity(r.Context(), 42, "alice", enums.RoleUser, "s1"))
			w.WriteHeader(http.StatusInternalServerError)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/chat", nil))

	if len(recorder.events) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(recorder.events))
	}
	event := recorder.events[0]
	if event.AccountUUID == nil || *event.AccountUUID != "chat-uuid-42" {
		t.Fatalf("account uuid not attributed: %+v", event)
	}
	if event.StatusCode != http.StatusInternalServerError || event.Method != http.MethodPost {
		t.Errorf("event = %+v", event)
	}
}

func TestErrorAuditAnonymousFailure(t *testing.T) {
	recorder := &capturingErrorRecorder{}
	handler := ErrorAudit(recorder, staticChatUUIDResolver{chatUUID: "chat-uuid-42"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil))

	if len(recorder.events) != 1 {
		t.Fatalf("expected 1 error event, got %d", len(recorder.events))
	}
	if recorder.events[0].AccountUUID != nil {
		t.Errorf("anonymous failure must carry no account uuid: %+v", recorder.events[0])
	}
}

func TestErrorAuditIgnoresClientErrors(t *testing.T) {
	recorder := &capturingErrorRecorder{}
	handler := ErrorAudit(recorder, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/models", nil))

	if len(recorder.events) != 0 {
		t.Errorf("client errors must not be audited: %+v", recorder.events)
	}
}
