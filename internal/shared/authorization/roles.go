// Package authorization holds the roles carried in access tokens. Casbin
// grants offer management to admin and read-only offer access to support;
// every other caller is a plain user limited to their own usage and billing.
package authorization

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleSupport UserRole = "support"
	RoleUser    UserRole = "user"
)

func (r UserRole) String() string {
	return string(r)
}

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSupport, RoleUser:
		return true
	}
	return false
}

// ParseUserRole falls back to RoleUser for empty or unknown claims.
func ParseUserRole(s string) UserRole {
	role := UserRole(s)
	if role.IsValid() {
		return role
	}
	return RoleUser
}
