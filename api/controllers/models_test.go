package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmorales-dev/localchat-backend/api/middleware"
	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/pkg/auth/session"
	"github.com/nmorales-dev/localchat-backend/pkg/enums"
)

type stubModelSessions struct {
	records  map[string]*session.Record
	selected map[string]string
	err      error
}

func (s *stubModelSessions) Get(ctx context.Context, sessionID string) (*session.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	record, ok := s.records[sessionID]
	if !ok {
		return nil, session.ErrNoSession
	}
	return record, nil
}

func (s *stubModelSessions) SetModel(ctx context.Context, sessionID, model string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.records[sessionID]; !ok {
		return session.ErrNoSession
	}
	if s.selected == nil {
		s.selected = map[string]string{}
	}
	s.selected[sessionID] = model
	return nil
}

type stubWarmer struct {
	warmed []string
	err    error
}

func (s *stubWarmer) Warmup(ctx context.Context, model string) error {
	s.warmed = append(s.warmed, model)
	return s.err
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Model{
		{Name: "llama3:8b"},
		{Name: "mistral:7b"},
		{Name: "dolphin-mixtral:8x7b"},
	}, []string{"dolphin", "uncensored"})
}

func identityRequest(method, target string, body []byte, role enums.Role) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithIdentity(req.Context(), 7, "alice", role, "session-1"))
}

func TestModelsListFiltersByRole(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 7, Role: enums.RoleUser, SelectedModel: "llama3:8b"},
	}}
	handler := ModelsList(testCatalog(), sessions, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/models", nil, enums.RoleUser))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Models        []string `json:"models"`
			SelectedModel string   `json:"selected_model"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Models) != 2 {
		t.Fatalf("expected 2 visible models, got %v", envelope.Data.Models)
	}
	for _, name := range envelope.Data.Models {
		if name == "dolphin-mixtral:8x7b" {
			t.Fatal("restricted model leaked to user role")
		}
	}
	if envelope.Data.SelectedModel != "llama3:8b" {
		t.Errorf("selected = %s", envelope.Data.SelectedModel)
	}
}

func TestModelsListAdminSeesAll(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 1, Role: enums.RoleAdmin},
	}}
	handler := ModelsList(testCatalog(), sessions, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodGet, "/api/v1/models", nil, enums.RoleAdmin))

	var envelope struct {
		Data struct {
			Models []string `json:"models"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Models) != 3 {
		t.Fatalf("expected full catalog, got %v", envelope.Data.Models)
	}
}

func TestModelSelectSuccess(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 7, Role: enums.RoleUser},
	}}
	warmer := &stubWarmer{}
	handler := ModelSelect(testCatalog(), sessions, warmer, nil)

	payload := []byte(`{"model":"mistral:7b"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/models/select", payload, enums.RoleUser))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if len(warmer.warmed) != 1 || warmer.warmed[0] != "mistral:7b" {
		t.Fatalf("warmup calls = %v", warmer.warmed)
	}
	if sessions.selected["session-1"] != "mistral:7b" {
		t.Fatalf("session not updated: %v", sessions.selected)
	}
}

func TestModelSelectRestrictedModelForbidden(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 7, Role: enums.RoleUser},
	}}
	warmer := &stubWarmer{}
	handler := ModelSelect(testCatalog(), sessions, warmer, nil)

	payload := []byte(`{"model":"dolphin-mixtral:8x7b"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/models/select", payload, enums.RoleUser))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
	if len(warmer.warmed) != 0 {
		t.Error("forbidden model must not be warmed")
	}
}

func TestModelSelectUnknownModel(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 1, Role: enums.RoleAdmin},
	}}
	handler := ModelSelect(testCatalog(), sessions, &stubWarmer{}, nil)

	payload := []byte(`{"model":"ghost:1b"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/models/select", payload, enums.RoleAdmin))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestModelSelectWarmupFailure(t *testing.T) {
	sessions := &stubModelSessions{records: map[string]*session.Record{
		"session-1": {AccountID: 7, Role: enums.RoleUser},
	}}
	warmer := &stubWarmer{err: context.DeadlineExceeded}
	handler := ModelSelect(testCatalog(), sessions, warmer, nil)

	payload := []byte(`{"model":"mistral:7b"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, identityRequest(http.MethodPost, "/api/v1/models/select", payload, enums.RoleUser))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if len(sessions.selected) != 0 {
		t.Error("failed warmup must not update the session")
	}
}
