package enums

import "fmt"

// ActorRole is the authenticated caller's role carried in the JWT.
type ActorRole string

const (
	RoleCustomer ActorRole = "customer"
	RoleStaff    ActorRole = "staff"
	RoleAdmin    ActorRole = "admin"
)

var validActorRoles = []ActorRole{
	RoleCustomer,
	RoleStaff,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if a == candidate {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role grants access to admin surfaces.
func (a ActorRole) IsStaff() bool {
	return a == RoleStaff || a == RoleAdmin
}

// ParseActorRole converts raw input into ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if value == string(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role: %s", value)
}
