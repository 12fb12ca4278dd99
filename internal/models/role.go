package models

// Role is the authorization level carried by a user and their access token.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// CanModerate reports whether the role may review and verify reports.
func (r Role) CanModerate() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin:
		return true
	case RoleUser:
		return false
	}
	return false
}

func (r Role) String() string { return string(r) }
