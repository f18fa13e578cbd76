package auth

// Role is a caller role. Ranks are ordered viewer < trainer < admin.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
)

var roleRanks = map[Role]int{
	RoleViewer:  1,
	RoleTrainer: 2,
	RoleAdmin:   3,
}

// NormalizeRole validates a role claim.
func NormalizeRole(value string) (Role, bool) {
	role := Role(value)
	if _, ok := roleRanks[role]; !ok {
		return "", false
	}
	return role, true
}

// RoleAtLeast reports whether role satisfies required. Unknown roles never do.
func RoleAtLeast(role Role, required Role) bool {
	rank, ok := roleRanks[role]
	return ok && rank >= roleRanks[required]
}
