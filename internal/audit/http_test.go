package audit

import (
	"net/http/httptest"
	"testing"

	"dogschool-admin/internal/auth"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.5:4321"
	if got := ClientIP(req); got != "10.0.0.5" {
		t.Fatalf("remote addr: got %q", got)
	}
	req.Header.Set("X-Real-IP", "192.168.1.9")
	if got := ClientIP(req); got != "192.168.1.9" {
		t.Fatalf("real ip: got %q", got)
	}
	req.Header.Set("X-Forwarded-For", "unknown, 203.0.113.7, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.7" {
		t.Fatalf("forwarded: got %q", got)
	}
}

func TestFromRequest_Trainer(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/sessions/s-1/complete", nil)
	req.RemoteAddr = "10.0.0.5:4321"
	req.Header.Set("User-Agent", "admin-ui")
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleTrainer, "t-1"))

	entry := FromRequest(req, "session.complete", "session", "s-1", map[string]any{"session_number": 8})
	if entry.Actor != "t-1" || entry.Role != "trainer" || entry.TrainerID != "t-1" {
		t.Fatalf("unexpected identity fields %+v", entry)
	}
	if entry.IP != "10.0.0.5" || entry.UserAgent != "admin-ui" {
		t.Fatalf("unexpected request fields %+v", entry)
	}
	if string(entry.Metadata) != `{"session_number":8}` {
		t.Fatalf("unexpected metadata %s", entry.Metadata)
	}
}

func TestFromRequest_AdminHasNoTrainer(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/settlements/paid", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), auth.RoleAdmin, "boss"))

	entry := FromRequest(req, "settlement.paid", "settlement", "st-1", nil)
	if entry.TrainerID != "" || entry.Metadata != nil {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestDigestJSON(t *testing.T) {
	if DigestJSON(nil) != "" {
		t.Fatalf("expected empty digest")
	}
	a := DigestJSON([]byte(`{"month":"2024-03"}`))
	if len(a) != 64 || a != DigestJSON([]byte(`{"month":"2024-03"}`)) {
		t.Fatalf("unstable digest %q", a)
	}
}
