package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-service/internal/domain"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

func newProjectFixture() (*ProjectService, *fakeProjectRepo, *fakeMemberRepo, *fakeUserRepo) {
	projects := newFakeProjectRepo()
	members := newFakeMemberRepo()
	users := newFakeUserRepo()
	svc := NewProjectService(ProjectDependencies{
		ProjectRepo: projects,
		MemberRepo:  members,
		UserRepo:    users,
	})
	return svc, projects, members, users
}

func registerUser(t *testing.T, users *fakeUserRepo, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestCreateProjectCreatesOwnerMembership(t *testing.T) {
	svc, _, members, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStatusActive, project.Status)
	require.Equal(t, domain.PriorityMedium, project.Priority)
	require.Equal(t, owner.ID, project.OwnerID)

	member, err := members.GetByProjectAndUser(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectRoleOwner, member.Role)
	require.NotNil(t, member.JoinedAt)
}

func TestCreateProjectRequiresName(t *testing.T) {
	svc, _, _, _ := newProjectFixture()

	_, err := svc.CreateProject(context.Background(), "user-1", ProjectCreateInput{Name: "  "})
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestInviteRequiresOwnerCapability(t *testing.T) {
	svc, _, members, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	dev := registerUser(t, users, "dev@example.com")
	watcher := registerUser(t, users, "watcher@example.com")
	target := registerUser(t, users, "target@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)
	members.add(project.ID, dev.ID, domain.ProjectRoleDeveloper)
	members.add(project.ID, watcher.ID, domain.ProjectRoleViewer)

	_, err = svc.Invite(ctx, project.ID, dev.ID, target.Email, domain.ProjectRoleViewer)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.Invite(ctx, project.ID, watcher.ID, target.Email, domain.ProjectRoleViewer)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = members.GetByProjectAndUser(ctx, project.ID, target.ID)
	require.Error(t, err)
}

func TestInviteFlow(t *testing.T) {
	svc, _, _, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	target := registerUser(t, users, "target@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)

	_, err = svc.Invite(ctx, project.ID, owner.ID, "nobody@example.com", domain.ProjectRoleViewer)
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = svc.Invite(ctx, project.ID, owner.ID, target.Email, domain.ProjectRoleOwner)
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	member, err := svc.Invite(ctx, project.ID, owner.ID, target.Email, domain.ProjectRoleClient)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectRoleClient, member.Role)
	require.NotNil(t, member.JoinedAt)
	require.NotNil(t, member.InvitedBy)
	require.Equal(t, owner.ID, *member.InvitedBy)

	_, err = svc.Invite(ctx, project.ID, owner.ID, target.Email, domain.ProjectRoleViewer)
	require.True(t, apperrors.IsCode(err, "ALREADY_MEMBER"))
}

func TestTransferOwnershipDemotesOldOwner(t *testing.T) {
	svc, projects, members, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	next := registerUser(t, users, "next@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)
	members.add(project.ID, next.ID, domain.ProjectRoleDeveloper)

	require.NoError(t, svc.TransferOwnership(ctx, project.ID, owner.ID, next.ID))

	newOwner, err := members.GetByProjectAndUser(ctx, project.ID, next.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectRoleOwner, newOwner.Role)

	oldOwner, err := members.GetByProjectAndUser(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectRoleDeveloper, oldOwner.Role)

	stored, err := projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, next.ID, stored.OwnerID)
}

func TestTransferOwnershipGuards(t *testing.T) {
	svc, _, members, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	dev := registerUser(t, users, "dev@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)
	members.add(project.ID, dev.ID, domain.ProjectRoleDeveloper)

	err = svc.TransferOwnership(ctx, project.ID, dev.ID, owner.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	err = svc.TransferOwnership(ctx, project.ID, owner.ID, owner.ID)
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	err = svc.TransferOwnership(ctx, project.ID, owner.ID, "user-unknown")
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	svc, _, members, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	dev := registerUser(t, users, "dev@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)
	members.add(project.ID, dev.ID, domain.ProjectRoleDeveloper)

	progress := 40
	_, err = svc.UpdateProject(ctx, project.ID, dev.ID, ProjectPatch{Progress: &progress})
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	bad := 140
	_, err = svc.UpdateProject(ctx, project.ID, owner.ID, ProjectPatch{Progress: &bad})
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	updated, err := svc.UpdateProject(ctx, project.ID, owner.ID, ProjectPatch{Progress: &progress})
	require.NoError(t, err)
	require.Equal(t, 40, updated.Progress)
}

func TestGetProjectMembershipGate(t *testing.T) {
	svc, _, _, users := newProjectFixture()
	ctx := context.Background()
	owner := registerUser(t, users, "owner@example.com")
	stranger := registerUser(t, users, "stranger@example.com")

	project, err := svc.CreateProject(ctx, owner.ID, ProjectCreateInput{Name: "rollout"})
	require.NoError(t, err)

	_, err = svc.GetProject(ctx, project.ID, stranger.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = svc.ListMembers(ctx, project.ID, stranger.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	got, err := svc.GetProject(ctx, project.ID, owner.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, got.ID)
}
