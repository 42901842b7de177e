package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/nmorales-dev/localchat-backend/pkg/errors"
)

type registerBody struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"123@Root!"}`))
	var body registerBody
	if err := DecodeJSONBody(req, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Username != "alice" {
		t.Errorf("username = %s", body.Username)
	}
}

func TestDecodeJSONBodyUnknownField(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"alice","email":"a@b.com","password":"x","extra":true}`))
	var body registerBody
	err := DecodeJSONBody(req, &body)
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation code, got %v", err)
	}
}

func TestDecodeJSONBodyFieldErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"al","email":"not-an-email","password":""}`))
	var body registerBody
	err := DecodeJSONBody(req, &body)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["username"] != "must be at least 3" {
		t.Errorf("username detail = %q", details["username"])
	}
	if details["email"] != "must be a valid email" {
		t.Errorf("email detail = %q", details["email"])
	}
	if details["password"] != "is required" {
		t.Errorf("password detail = %q", details["password"])
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest("GET", "/?limit=25", nil)
	got, err := ParseQueryInt(req, "limit", 50, 1, 100)
	if err != nil || got != 25 {
		t.Fatalf("got %d, %v", got, err)
	}

	req = httptest.NewRequest("GET", "/", nil)
	got, err = ParseQueryInt(req, "limit", 50, 1, 100)
	if err != nil || got != 50 {
		t.Fatalf("default got %d, %v", got, err)
	}

	req = httptest.NewRequest("GET", "/?limit=1000", nil)
	if _, err := ParseQueryInt(req, "limit", 50, 1, 100); err == nil {
		t.Error("expected out of range error")
	}

	req = httptest.NewRequest("GET", "/?limit=abc", nil)
	if _, err := ParseQueryInt(req, "limit", 50, 1, 100); err == nil {
		t.Error("expected numeric error")
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello  ", 0); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeString("  hello world  ", 5); got != "hello" {
		t.Errorf("got %q", got)
	}
}
