package authz

import "github.com/spec-kit/project-service/internal/domain"

// ResolveGlobalRole applies the acting-role override on top of the persisted
// profile role. The override is an explicit per-request parameter so a
// privileged account can preview the app as a lesser role; it is only
// honored for super admins and an empty override resolves to the persisted
// role. Global roles gate navigation and the admin area only — per-project
// permissions come from the membership table.
func ResolveGlobalRole(persisted, acting domain.GlobalRole) domain.GlobalRole {
	if acting == "" || acting == persisted {
		return persisted
	}
	if persisted != domain.GlobalRoleSuperAdmin {
		return persisted
	}
	if !validGlobalRole(acting) {
		return persisted
	}
	return acting
}

// IsPrivileged reports whether the resolved role may operate on any ticket.
func IsPrivileged(role domain.GlobalRole) bool {
	return role == domain.GlobalRoleSuperAdmin || role == domain.GlobalRoleAdmin
}

func validGlobalRole(role domain.GlobalRole) bool {
	switch role {
	case domain.GlobalRoleUser, domain.GlobalRoleSuperAdmin, domain.GlobalRoleAdmin,
		domain.GlobalRoleDeveloper, domain.GlobalRoleClient, domain.GlobalRoleViewer:
		return true
	}
	return false
}
