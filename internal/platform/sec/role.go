// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Unrestricted system access
	RoleAdmin UserRole = "admin"

	// Can place holds and waivers and read the audit log
	RoleModerator UserRole = "moderator"

	// Pipeline services: preview compilation and deposit
	RoleAutomation UserRole = "automation"

	// Default role for registered submitters
	RoleSubmitter UserRole = "submitter"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleAutomation:
		return 20
	case RoleSubmitter:
		return 10
	default:
		return 0
	}
}
