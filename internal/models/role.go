package models

import "fmt"

// Role is the closed set of actors the portal knows about.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleKomite Role = "KOMITE"
	RoleSantri Role = "SANTRI"
	RoleGuru   Role = "GURU"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleKomite, RoleSantri, RoleGuru}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleKomite, RoleSantri, RoleGuru:
		return true
	}
	return false
}

// ParseRole converts a raw claim or form value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
