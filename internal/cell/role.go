package cell

import (
	"errors"
	"fmt"
)

// Role is the function a group of nodes serves inside a cell.
type Role string

// Known roles.
const (
	RoleNucleus       Role = "nucleus"
	RoleStatelessBody Role = "stateless-body"
	RoleStatefulBody  Role = "stateful-body"
	RoleMembrane      Role = "membrane"
	RoleBastion       Role = "bastion"
)

// ErrUnknownRole is returned by ParseRole for names outside the role set.
var ErrUnknownRole = errors.New("unknown role")

var allRoles = []Role{RoleNucleus, RoleStatelessBody, RoleStatefulBody, RoleMembrane, RoleBastion}

// Roles returns the body roles in display order. The bastion is not
// listed since it carries no workload.
func Roles() []Role {
	return []Role{RoleNucleus, RoleStatelessBody, RoleStatefulBody, RoleMembrane}
}

// AllRoles returns every known role, bastion included.
func AllRoles() []Role {
	return append([]Role(nil), allRoles...)
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range allRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Stateful reports whether shrinking the role may lose data. Capacity
// decreases on these roles require operator confirmation.
func (r Role) Stateful() bool {
	return r == RoleNucleus || r == RoleStatefulBody
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
