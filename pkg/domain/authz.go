package domain

// Role identifies the access level of the current session's user.
type Role string

// Session roles. Inspectors read everything but modify nothing.
const (
	RoleAdmin     Role = "Admin"
	RoleInspector Role = "Inspector"
	RoleEngineer  Role = "Engineer"
)

// User is the identity held by a session. There is no server-verified token;
// the role drives advisory gating only.
type User struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// CanModify reports whether a role may create, edit, or delete records of the
// given entity type. Ships are admin-only; components and jobs are open to
// admins and engineers. Reads are unrestricted for every role and therefore
// not represented here.
//
// This is advisory UI gating, not a security boundary: nothing prevents a
// caller from reaching the store directly.
func CanModify(role Role, entity EntityType) bool {
	switch entity {
	case EntityShip:
		return role == RoleAdmin
	case EntityComponent, EntityJob:
		return role == RoleAdmin || role == RoleEngineer
	case EntityNotification:
		// The feed is per-session housekeeping; any authenticated role may
		// mark entries read or delete them.
		return role == RoleAdmin || role == RoleEngineer || role == RoleInspector
	default:
		return false
	}
}
