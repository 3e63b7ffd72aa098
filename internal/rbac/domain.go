// Package rbac holds the closed role set of the alumni fund and the
// HTTP middleware that gates routes on it. Roles are constants rather
// than database rows: the application has exactly three.
package rbac

// Role represents a high-level permission grouping.
type Role string

const (
	// RoleAlumni can submit contributions and own expenses.
	RoleAlumni Role = "alumni"
	// RoleAdmin manages users and can approve, reject and edit entries.
	RoleAdmin Role = "admin"
	// RoleTreasurer is an admin with the finance dashboard as home.
	RoleTreasurer Role = "treasurer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAlumni, RoleAdmin, RoleTreasurer:
		return true
	}
	return false
}

// CanDecide reports whether the role may approve or reject entries.
func (r Role) CanDecide() bool {
	return r == RoleAdmin || r == RoleTreasurer
}

// Actor describes the authenticated principal passed into state-changing
// calls. The core records the identity it is given and never
// authenticates.
type Actor struct {
	ID   int64
	Role Role
}
