package auth

// Privilege levels, strongest first. A user's role satisfies any
// requirement at or below its own rank.
const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

var roleRank = map[string]int{
	RoleAdmin:  3,
	RoleEditor: 2,
	RoleViewer: 1,
}

// ValidRole reports whether the given string is a known role.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// HasPrivilege reports whether role meets the required minimum role.
// Unknown roles never qualify.
func HasPrivilege(role, required string) bool {
	have, ok := roleRank[role]
	if !ok {
		return false
	}
	need, ok := roleRank[required]
	if !ok {
		return false
	}
	return have >= need
}
