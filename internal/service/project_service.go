package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-service/internal/authz"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/events"
	"github.com/spec-kit/project-service/internal/repository"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// ProjectService coordinates projects and their memberships.
type ProjectService struct {
	projects   repository.ProjectRepository
	members    repository.MemberRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// ProjectDependencies bundles repositories for the project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	MemberRepo  repository.MemberRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
	Priority    domain.Priority
	DueDate     *time.Time
	Budget      *float64
	Tags        []string
}

// ProjectPatch carries optional project updates; nil fields are untouched.
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
	Priority    *domain.Priority
	Progress    *int
	DueDate     *time.Time
	Budget      *float64
	Tags        []string
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		members:    deps.MemberRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// CreateProject creates the project and its owner membership. The two
// writes are separate backend calls with no cross-entity atomicity.
func (s *ProjectService) CreateProject(ctx context.Context, ownerID string, input ProjectCreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("project name required", nil)
	}

	project := &domain.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.ProjectStatusActive,
		Priority:    input.Priority,
		Progress:    0,
		DueDate:     input.DueDate,
		Budget:      input.Budget,
		Tags:        input.Tags,
		OwnerID:     ownerID,
	}
	if project.Priority == "" {
		project.Priority = domain.PriorityMedium
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	member := &domain.ProjectMember{
		ProjectID: project.ID,
		UserID:    ownerID,
		Role:      domain.ProjectRoleOwner,
		InvitedAt: now,
		JoinedAt:  &now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventProjectCreated,
		SubjectID: project.ID,
		ActorID:   ownerID,
	})
	return project, nil
}

// GetRole returns the membership role, or the not-a-member sentinel.
func (s *ProjectService) GetRole(ctx context.Context, projectID, userID string) (domain.ProjectRole, error) {
	member, err := s.members.GetByProjectAndUser(ctx, projectID, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.ProjectRoleNone, nil
		}
		return domain.ProjectRoleNone, apperrors.MapError(err)
	}
	return member.Role, nil
}

// Invite adds a user to the project by email. Invitations are auto-accepted:
// joined_at is stamped immediately.
func (s *ProjectService) Invite(ctx context.Context, projectID, inviterID, targetEmail string, role domain.ProjectRole) (*domain.ProjectMember, error) {
	inviterRole, err := s.GetRole(ctx, projectID, inviterID)
	if err != nil {
		return nil, err
	}
	if !authz.CanInviteMembers(inviterRole) {
		return nil, apperrors.NewForbidden("only the project owner can invite members")
	}
	if role == domain.ProjectRoleOwner || !validProjectRole(role) {
		return nil, apperrors.NewValidationError("invalid member role", map[string]any{"role": role})
	}

	target, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(targetEmail)))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"email": targetEmail})
		}
		return nil, apperrors.MapError(err)
	}

	if _, err := s.members.GetByProjectAndUser(ctx, projectID, target.ID); err == nil {
		return nil, apperrors.NewAlreadyMember(map[string]any{"user_id": target.ID})
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	member := &domain.ProjectMember{
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      role,
		InvitedBy: &inviterID,
		InvitedAt: now,
		JoinedAt:  &now,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventMemberInvited,
		SubjectID: projectID,
		ActorID:   inviterID,
		Payload: events.MemberInvitedPayload{
			ProjectID: projectID,
			UserID:    target.ID,
			Role:      role,
		},
	})
	return member, nil
}

// TransferOwnership moves the single owner role to another member. The old
// owner is demoted to developer, keeping exactly one owner per project.
func (s *ProjectService) TransferOwnership(ctx context.Context, projectID, actorID, newOwnerID string) error {
	actorRole, err := s.GetRole(ctx, projectID, actorID)
	if err != nil {
		return err
	}
	if actorRole != domain.ProjectRoleOwner {
		return apperrors.NewForbidden("only the project owner can transfer ownership")
	}
	if newOwnerID == actorID {
		return apperrors.NewValidationError("new owner must be a different member", nil)
	}

	if _, err := s.members.GetByProjectAndUser(ctx, projectID, newOwnerID); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("project member", map[string]any{"user_id": newOwnerID})
		}
		return apperrors.MapError(err)
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return apperrors.MapError(err)
	}

	if err := s.members.UpdateRole(ctx, projectID, newOwnerID, domain.ProjectRoleOwner); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.members.UpdateRole(ctx, projectID, actorID, domain.ProjectRoleDeveloper); err != nil {
		return apperrors.MapError(err)
	}
	project.OwnerID = newOwnerID
	if err := s.projects.Update(ctx, project); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventOwnershipTransferred,
		SubjectID: projectID,
		ActorID:   actorID,
		Payload: events.OwnershipTransferredPayload{
			ProjectID:  projectID,
			OldOwnerID: actorID,
			NewOwnerID: newOwnerID,
		},
	})
	return nil
}

// ListMembers returns the membership roster for a project member.
func (s *ProjectService) ListMembers(ctx context.Context, projectID, actorID string) ([]domain.ProjectMember, error) {
	role, err := s.GetRole(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	members, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// ListProjectsForUser returns the projects the user belongs to.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	projects, err := s.projects.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

// GetProject fetches a project visible to the actor.
func (s *ProjectService) GetProject(ctx context.Context, projectID, actorID string) (*domain.Project, error) {
	role, err := s.GetRole(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if role == domain.ProjectRoleNone {
		return nil, apperrors.NewForbidden("not a project member")
	}
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// UpdateProject applies a partial update; owner only.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID string, patch ProjectPatch) (*domain.Project, error) {
	role, err := s.GetRole(ctx, projectID, actorID)
	if err != nil {
		return nil, err
	}
	if !authz.Has(role, authz.CapEditProject) {
		return nil, apperrors.NewForbidden("only the project owner can edit the project")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("project name required", nil)
		}
		project.Name = name
	}
	if patch.Description != nil {
		project.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		project.Status = *patch.Status
	}
	if patch.Priority != nil {
		project.Priority = *patch.Priority
	}
	if patch.Progress != nil {
		if *patch.Progress < 0 || *patch.Progress > 100 {
			return nil, apperrors.NewValidationError("progress must be between 0 and 100",
				map[string]any{"progress": *patch.Progress})
		}
		project.Progress = *patch.Progress
	}
	if patch.DueDate != nil {
		project.DueDate = patch.DueDate
	}
	if patch.Budget != nil {
		project.Budget = patch.Budget
	}
	if patch.Tags != nil {
		project.Tags = patch.Tags
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

func validProjectRole(role domain.ProjectRole) bool {
	switch role {
	case domain.ProjectRoleOwner, domain.ProjectRoleDeveloper, domain.ProjectRoleClient, domain.ProjectRoleViewer:
		return true
	}
	return false
}

func (s *ProjectService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
