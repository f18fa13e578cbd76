package audit

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"dogschool-admin/internal/auth"
)

// FromRequest builds an entry for an API action from the caller identity and
// request headers. Trainer callers are recorded as the affected trainer.
func FromRequest(r *http.Request, action, resourceType, resourceID string, meta any) Entry {
	entry := Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	}
	if r == nil {
		return entry
	}
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		entry.Actor = identity.Subject
		entry.Role = string(identity.Role)
		if identity.Role == auth.RoleTrainer {
			entry.TrainerID = identity.Subject
		}
	}
	if meta != nil {
		if payload, err := json.Marshal(meta); err == nil {
			entry.Metadata = payload
		}
	}
	entry.IP = ClientIP(r)
	entry.UserAgent = r.UserAgent()
	return entry
}

// ClientIP returns the first valid address from X-Forwarded-For, then
// X-Real-IP, then RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := net.ParseIP(strings.TrimSpace(candidate)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
