package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nmorales-dev/localchat-backend/internal/catalog"
	"github.com/nmorales-dev/localchat-backend/internal/chat"
	"github.com/nmorales-dev/localchat-backend/pkg/config"
)

func testRouter() http.Handler {
	cfg := &config.Config{
		App: config.AppConfig{Env: "dev", Host: "127.0.0.1", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "localchat", ExpirationMinutes: 60},
	}
	return NewRouter(Deps{
		Config:   cfg,
		Catalog:  catalog.New(nil, nil),
		ChatRepo: chat.NewRepository(),
	})
}

func TestRouterHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterMetricsExposed(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/models"},
		{http.MethodGet, "/api/v1/conversations"},
		{http.MethodPost, "/api/v1/chat"},
		{http.MethodGet, "/api/v1/profile"},
		{http.MethodGet, "/api/v1/settings"},
		{http.MethodGet, "/api/admin/v1/accounts"},
	}
	router := testRouter()
	for _, tc := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
