package entity

import "slices"

// Role represents the privilege level of a user.
type Role string

const (
	// RoleUser is the least-privileged role assigned at signup.
	RoleUser Role = "USER"
	// RoleAdmin bypasses ownership checks.
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// ParseRole converts a claim value into a Role, falling back to RoleUser.
func ParseRole(s string) Role {
	role := Role(s)
	if !role.IsValid() {
		return RoleUser
	}

	return role
}
