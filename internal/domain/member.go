package domain

import "time"

// ProjectRole is the per-project permission tier carried by a membership.
// It is independent of the member's global role.
type ProjectRole string

const (
	ProjectRoleOwner     ProjectRole = "owner"
	ProjectRoleDeveloper ProjectRole = "developer"
	ProjectRoleClient    ProjectRole = "client"
	ProjectRoleViewer    ProjectRole = "viewer"

	// ProjectRoleNone is the not-a-member sentinel returned by role lookups.
	ProjectRoleNone ProjectRole = ""
)

// ProjectMember is the (project, user) relationship row. At most one row
// exists per pair; exactly one membership per project carries the owner role.
type ProjectMember struct {
	ID        string
	ProjectID string
	UserID    string
	Role      ProjectRole
	InvitedBy *string
	InvitedAt time.Time
	JoinedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
