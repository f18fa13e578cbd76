package auth

import (
	"net/http"
	"strings"
)

// Rule maps a path to the role it requires. A rule with an empty Method
// matches every method; Prefix rules match any path below Path.
type Rule struct {
	Path   string
	Prefix bool
	Method string
	Role   Role
}

func (r Rule) matches(path, method string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	if r.Prefix {
		return strings.HasPrefix(path, r.Path)
	}
	return path == r.Path
}

// DefaultRules is the role table of the admin API. First match wins.
var DefaultRules = []Rule{
	{Path: "/api/v1/settlements/record", Role: RoleAdmin},
	{Path: "/api/v1/settlements/paid", Role: RoleAdmin},
	{Path: "/api/v1/settlements", Role: RoleTrainer},
	{Path: "/api/v1/settlements/history", Role: RoleTrainer},
	{Path: "/api/v1/settlements/export.", Prefix: true, Role: RoleTrainer},
	{Path: "/api/v1/sessions/", Prefix: true, Role: RoleTrainer},
	{Path: "/api/v1/clients/", Prefix: true, Method: http.MethodGet, Role: RoleViewer},
	{Path: "/api/v1/clients/", Prefix: true, Role: RoleTrainer},
}

// Policy determines required roles by request.
type Policy struct {
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
	Rules          []Rule
}

// NewDefaultPolicy builds the API policy with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{ExemptPaths: set, ExemptPrefixes: exemptPrefixes, Rules: DefaultRules}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves required role for the request. Unlisted API paths
// are readable by viewers and writable by admins.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	path, method := r.URL.Path, r.Method
	for _, rule := range p.Rules {
		if rule.matches(path, method) {
			return rule.Role, true
		}
	}
	if !strings.HasPrefix(path, "/api/") {
		return "", false
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return RoleViewer, true
	default:
		return RoleAdmin, true
	}
}
