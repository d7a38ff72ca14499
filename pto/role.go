package pto

import "fmt"

// =============================================================================
// ROLES - Closed enumeration with an explicit capability table
// =============================================================================

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// Roles lists every role, lowest privilege first.
var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts the canonical upper-case names. Empty means EMPLOYEE.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleEmployee, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Capability is something a role may be allowed to do.
type Capability string

const (
	CapViewDirectory   Capability = "view_directory"
	CapManageTeam      Capability = "manage_team"
	CapApproveRequests Capability = "approve_requests"
	CapAdminister      Capability = "administer"
)

var capabilities = map[Capability][]Role{
	CapViewDirectory:   {RoleEmployee, RoleManager, RoleAdmin},
	CapManageTeam:      {RoleManager, RoleAdmin},
	CapApproveRequests: {RoleManager, RoleAdmin},
	CapAdminister:      {RoleAdmin},
}

// Can reports whether role r holds capability c. Unknown roles and unknown
// capabilities hold nothing.
func Can(r Role, c Capability) bool {
	for _, allowed := range capabilities[c] {
		if allowed == r {
			return true
		}
	}
	return false
}

// CapabilitiesOf returns the capabilities held by r, in a stable order.
func CapabilitiesOf(r Role) []Capability {
	var out []Capability
	for _, c := range []Capability{CapViewDirectory, CapManageTeam, CapApproveRequests, CapAdminister} {
		if Can(r, c) {
			out = append(out, c)
		}
	}
	return out
}
