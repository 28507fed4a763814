package domain

import "time"

// GlobalRole is the coarse permission tier on a profile, independent of any
// project. Most accounts carry RoleUser; operational roles exist for
// navigation and admin gating only.
type GlobalRole string

const (
	GlobalRoleUser       GlobalRole = "user"
	GlobalRoleSuperAdmin GlobalRole = "super_admin"
	GlobalRoleAdmin      GlobalRole = "admin"
	GlobalRoleDeveloper  GlobalRole = "developer"
	GlobalRoleClient     GlobalRole = "client"
	GlobalRoleViewer     GlobalRole = "viewer"
)

// User is the authenticated principal record.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the 1:1 companion record for a user. It always exists once the
// principal has authenticated; a missing row is auto-provisioned on load.
type Profile struct {
	UserID    string
	FullName  *string
	Role      GlobalRole
	Verified  bool
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the full name or the empty string.
func (p *Profile) DisplayName() string {
	if p.FullName == nil {
		return ""
	}
	return *p.FullName
}
