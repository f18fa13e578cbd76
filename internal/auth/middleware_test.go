package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	secret := []byte("test-secret")
	policy := NewDefaultPolicy(nil, nil)
	mw := NewMiddleware(secret, policy)
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settlements?trainer_id=t-1&month=2024-03", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthMiddleware_ViewerForbiddenSchedule(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "user-1", "viewer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/c-1/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_TrainerForbiddenRecord(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "t-1", "trainer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlements/record", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAuthMiddleware_TrainerIdentityInContext(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "t-1", "trainer")
	mw := NewMiddleware(secret, NewDefaultPolicy(nil, nil))
	var gotRole Role
	var gotSubject string
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRole = RoleFromContext(r.Context())
		gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/s-1/complete", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotRole != RoleTrainer || gotSubject != "t-1" {
		t.Fatalf("unexpected identity %s/%s", gotRole, gotSubject)
	}
}

func TestAuthMiddleware_ExemptHealthz(t *testing.T) {
	mw := NewMiddleware([]byte("test-secret"), NewDefaultPolicy([]string{"/healthz"}, nil))
	handler := mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestEnsureTrainerAccess(t *testing.T) {
	admin := WithIdentity(context.Background(), RoleAdmin, "boss")
	trainer := WithIdentity(context.Background(), RoleTrainer, "t-1")
	viewer := WithIdentity(context.Background(), RoleViewer, "t-1")

	if err := EnsureTrainerAccess(admin, "t-2"); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if err := EnsureTrainerAccess(trainer, "t-1"); err != nil {
		t.Fatalf("own trainer: %v", err)
	}
	if err := EnsureTrainerAccess(trainer, "t-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for other trainer, got %v", err)
	}
	if err := EnsureTrainerAccess(viewer, "t-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden for viewer, got %v", err)
	}
	if err := EnsureTrainerAccess(context.Background(), "t-1"); err != nil {
		t.Fatalf("anonymous: %v", err)
	}
}

func TestParseJWT_MissingSubject(t *testing.T) {
	secret := []byte("test-secret")
	token := mustToken(t, secret, "", "admin")
	if _, err := ParseJWT(token, secret); err == nil {
		t.Fatalf("expected error for missing subject")
	}
}

func TestParseJWT_TrainerIDClaim(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{
		Role:      "trainer",
		TrainerID: "t-9",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	parsed, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := parsed.Identity(); got.Role != RoleTrainer || got.Subject != "t-9" {
		t.Fatalf("unexpected identity %+v", got)
	}
}

func TestParseJWT_RequiresExpiry(t *testing.T) {
	secret := []byte("test-secret")
	claims := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{Subject: "boss"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := ParseJWT(token, secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPolicy_RequiredRole(t *testing.T) {
	policy := NewDefaultPolicy(nil, nil)
	cases := []struct {
		method string
		path   string
		want   Role
		ok     bool
	}{
		{http.MethodGet, "/api/v1/clients/c-1/sessions", RoleViewer, true},
		{http.MethodPost, "/api/v1/clients/c-1/sessions", RoleTrainer, true},
		{http.MethodPost, "/api/v1/sessions/s-1/complete", RoleTrainer, true},
		{http.MethodGet, "/api/v1/settlements", RoleTrainer, true},
		{http.MethodGet, "/api/v1/settlements/export.pdf", RoleTrainer, true},
		{http.MethodPost, "/api/v1/settlements/paid", RoleAdmin, true},
		{http.MethodGet, "/api/v1/cities", RoleViewer, true},
		{http.MethodDelete, "/api/v1/cities/1", RoleAdmin, true},
		{http.MethodGet, "/healthz", "", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		got, ok := policy.RequiredRole(req)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s %s: expected %q/%v, got %q/%v", tc.method, tc.path, tc.want, tc.ok, got, ok)
		}
	}
}

func mustToken(t *testing.T, secret []byte, subject, role string) string {
	t.Helper()
	signed, err := IssueJWT(secret, subject, Role(role), time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
