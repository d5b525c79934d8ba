package models

import (
	"fmt"
	"strings"
)

// Role is an account role. Every table keyed by Role is a fixed array of
// NumRoles entries, so a role without an entry cannot be expressed.
type Role int

const (
	RoleStudent Role = iota
	RoleStaff
	RoleAdmin
)

// NumRoles is the number of defined roles
const NumRoles = 3

// Roles lists every role in display order
var Roles = [NumRoles]Role{RoleStudent, RoleStaff, RoleAdmin}

var roleSegments = [NumRoles]string{"student", "staff", "admin"}
var roleTitles = [NumRoles]string{"Student", "Staff", "Admin"}

// Segment is the path segment of the role's subtree, e.g. "staff"
func (r Role) Segment() string {
	return roleSegments[r]
}

// String returns the display name of the role
func (r Role) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleTitles[r]
}

// Valid reports whether r is one of the defined roles
func (r Role) Valid() bool {
	return r >= 0 && r < NumRoles
}

// RoleFromSegment maps a path segment back to its role
func RoleFromSegment(segment string) (Role, bool) {
	for _, r := range Roles {
		if roleSegments[r] == segment {
			return r, true
		}
	}
	return 0, false
}

// RoleNames holds the role spellings used by the clearance API. The first
// spelling of each role is the one sent on activation; every spelling is
// accepted when reading a profile.
type RoleNames [NumRoles][]string

// DefaultRoleNames accepts both "admin" and "systemadmin" for administrators
var DefaultRoleNames = RoleNames{
	RoleStudent: {"student"},
	RoleStaff:   {"staff"},
	RoleAdmin:   {"admin", "systemadmin"},
}

// ParseRoleNames parses an alias list such as
// "student=student;staff=staff;admin=systemadmin,admin".
// Roles left out of the list keep their default spellings.
func ParseRoleNames(list string) (RoleNames, error) {
	names := DefaultRoleNames
	list = strings.TrimSpace(list)
	if list == "" {
		return names, nil
	}

	for _, part := range strings.Split(list, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return names, fmt.Errorf("invalid role alias %q: expected role=name[,name]", part)
		}

		role, ok := RoleFromSegment(strings.TrimSpace(key))
		if !ok {
			return names, fmt.Errorf("unknown role %q in role aliases", key)
		}

		var aliases []string
		for _, alias := range strings.Split(value, ",") {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if alias != "" {
				aliases = append(aliases, alias)
			}
		}
		if len(aliases) == 0 {
			return names, fmt.Errorf("role %q has no API names", key)
		}
		names[role] = aliases
	}

	// A spelling claimed by two roles would make Parse ambiguous
	seen := make(map[string]Role)
	for _, r := range Roles {
		for _, alias := range names[r] {
			if other, dup := seen[alias]; dup && other != r {
				return names, fmt.Errorf("role name %q is mapped to both %s and %s", alias, other, r)
			}
			seen[alias] = r
		}
	}

	return names, nil
}

// Parse maps an API role string to a Role. Unknown strings report false.
func (n RoleNames) Parse(apiRole string) (Role, bool) {
	apiRole = strings.ToLower(strings.TrimSpace(apiRole))
	if apiRole == "" {
		return 0, false
	}
	for _, r := range Roles {
		for _, alias := range n[r] {
			if alias == apiRole {
				return r, true
			}
		}
	}
	return 0, false
}

// APIName is the spelling sent to the API for r
func (n RoleNames) APIName(r Role) string {
	if len(n[r]) == 0 {
		return r.Segment()
	}
	return n[r][0]
}
