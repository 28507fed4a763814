package authz

import "github.com/spec-kit/project-service/internal/domain"

// Capability is a named permission check derived from a project role.
type Capability string

const (
	CapCreateTask         Capability = "create_task"
	CapReviewTask         Capability = "review_task"
	CapInviteMembers      Capability = "invite_members"
	CapSeeDeliverableLink Capability = "see_deliverable_link"
	CapEditProject        Capability = "edit_project"
)

// capabilityTable is the single source of truth for project-role
// permissions. Every component consults this table; there are no
// per-component role switches.
var capabilityTable = map[domain.ProjectRole]map[Capability]struct{}{
	domain.ProjectRoleOwner: capSet(
		CapCreateTask, CapReviewTask, CapInviteMembers, CapSeeDeliverableLink, CapEditProject,
	),
	domain.ProjectRoleDeveloper: capSet(
		CapCreateTask, CapSeeDeliverableLink,
	),
	domain.ProjectRoleClient: capSet(
		CapReviewTask, CapSeeDeliverableLink,
	),
	domain.ProjectRoleViewer: capSet(),
}

func capSet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether the role grants the capability. Unknown roles and the
// not-a-member sentinel degrade to viewer: least privilege when a role
// lookup fails.
func Has(role domain.ProjectRole, cap Capability) bool {
	set, ok := capabilityTable[role]
	if !ok {
		set = capabilityTable[domain.ProjectRoleViewer]
	}
	_, granted := set[cap]
	return granted
}

func CanCreateTask(role domain.ProjectRole) bool { return Has(role, CapCreateTask) }

func CanReviewTask(role domain.ProjectRole) bool { return Has(role, CapReviewTask) }

func CanInviteMembers(role domain.ProjectRole) bool { return Has(role, CapInviteMembers) }

// CanSeeDeliverableLink is granted to every member except viewers. The
// viewer fallback above makes non-members equivalent to viewers here.
func CanSeeDeliverableLink(role domain.ProjectRole) bool {
	return Has(role, CapSeeDeliverableLink)
}
