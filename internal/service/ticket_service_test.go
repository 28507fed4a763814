package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-service/internal/domain"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

const (
	submitterA = "user-a"
	submitterB = "user-b"
	operator   = "user-operator"
	deptID     = "dept-support"
)

func newTicketFixture() (*TicketService, *fakeTicketRepo, *fakeMessageRepo) {
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	departments := newFakeDepartmentRepo(domain.Department{ID: deptID, Name: "Technical Support"})
	svc := NewTicketService(TicketDependencies{
		TicketRepo:     tickets,
		MessageRepo:    messages,
		DepartmentRepo: departments,
	})
	return svc, tickets, messages
}

func TestCreateTicketDefaults(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "login broken"})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusOpen, ticket.Status)
	require.Equal(t, domain.PriorityMedium, ticket.Priority)
	require.True(t, strings.HasPrefix(ticket.ExternalKey, "TCK-"))
	require.Len(t, ticket.ExternalKey, len("TCK-")+8)
	require.Nil(t, ticket.AssigneeID)
}

func TestCreateTicketValidation(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "  "})
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	missing := "dept-missing"
	_, err = svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "x", DepartmentID: &missing})
	require.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestListTicketsVisibility(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	_, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)
	_, err = svc.CreateTicket(ctx, submitterB, TicketCreateInput{Subject: "b's ticket"})
	require.NoError(t, err)

	own, err := svc.ListTickets(ctx, submitterA, false, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	require.Equal(t, submitterA, own[0].SubmitterID)

	all, err := svc.ListTickets(ctx, operator, true, TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestGetTicketAccess(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)

	_, _, err = svc.GetTicket(ctx, submitterB, false, ticket.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	got, _, err := svc.GetTicket(ctx, operator, true, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, ticket.ID, got.ID)
}

func TestAssignToSelf(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)

	_, err = svc.AssignToSelf(ctx, submitterA, false, ticket.ID)
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	claimed, err := svc.AssignToSelf(ctx, operator, true, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, claimed.AssigneeID)
	require.Equal(t, operator, *claimed.AssigneeID)
	require.Equal(t, domain.TicketStatusInProgress, claimed.Status)

	_, err = svc.AssignToSelf(ctx, "user-second-operator", true, ticket.ID)
	require.True(t, apperrors.IsCode(err, "ALREADY_ASSIGNED"))
}

// staleTicketRepo serves reads from before the first claim landed, the way a
// second operator's load can race the winning write.
type staleTicketRepo struct {
	*fakeTicketRepo
}

func (r *staleTicketRepo) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := r.fakeTicketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeID = nil
	return ticket, nil
}

func TestAssignToSelfConcurrentClaimLoses(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:     &staleTicketRepo{fakeTicketRepo: tickets},
		MessageRepo:    newFakeMessageRepo(),
		DepartmentRepo: newFakeDepartmentRepo(),
	})
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)

	claimed, err := svc.AssignToSelf(ctx, operator, true, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, operator, *claimed.AssigneeID)

	// The second claimant's read still shows the ticket unassigned, but the
	// conditional write must reject the claim.
	_, err = svc.AssignToSelf(ctx, "user-second-operator", true, ticket.ID)
	require.True(t, apperrors.IsCode(err, "ALREADY_ASSIGNED"))

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, operator, *stored.AssigneeID)
}

func TestCollectTicketsPagesThroughWindow(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: fmt.Sprintf("ticket %d", i)})
		require.NoError(t, err)
	}

	all, err := svc.CollectTickets(ctx, operator, true, TicketListFilter{}, 2)
	require.NoError(t, err)
	require.Len(t, all, 5)

	seen := map[string]bool{}
	for _, ticket := range all {
		seen[ticket.ID] = true
	}
	require.Len(t, seen, 5)
}

func TestAdminUpdateRoutesOpenTicket(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket", Priority: domain.PriorityUrgent})
	require.NoError(t, err)

	dept := deptID
	updated, err := svc.AdminUpdate(ctx, operator, domain.GlobalRoleSuperAdmin, ticket.ID, TicketAdminPatch{DepartmentID: &dept})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.DepartmentID)
	require.Equal(t, deptID, *updated.DepartmentID)

	// Re-routing to the same department must not reopen the transition logic.
	again, err := svc.AdminUpdate(ctx, operator, domain.GlobalRoleSuperAdmin, ticket.ID, TicketAdminPatch{DepartmentID: &dept})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusInProgress, again.Status)
}

func TestAdminUpdateRequiresSuperAdmin(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)

	_, err = svc.AdminUpdate(ctx, operator, domain.GlobalRoleAdmin, ticket.ID, TicketAdminPatch{})
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAdminUpdateStatusTransitions(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)

	resolved := domain.TicketStatusResolved
	_, err = svc.AdminUpdate(ctx, operator, domain.GlobalRoleSuperAdmin, ticket.ID, TicketAdminPatch{Status: &resolved})
	require.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	closed := domain.TicketStatusClosed
	updated, err := svc.AdminUpdate(ctx, operator, domain.GlobalRoleSuperAdmin, ticket.ID, TicketAdminPatch{Status: &closed})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, updated.Status)

	open := domain.TicketStatusOpen
	_, err = svc.AdminUpdate(ctx, operator, domain.GlobalRoleSuperAdmin, ticket.ID, TicketAdminPatch{Status: &open})
	require.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestAddMessageParticipantsAndStaffFlag(t *testing.T) {
	svc, tickets, _ := newTicketFixture()
	ctx := context.Background()

	ticket, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "a's ticket"})
	require.NoError(t, err)
	createdAt := ticket.UpdatedAt

	_, err = svc.AddMessage(ctx, submitterB, false, ticket.ID, "let me in")
	require.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	fromUser, err := svc.AddMessage(ctx, submitterA, false, ticket.ID, "any update?")
	require.NoError(t, err)
	require.False(t, fromUser.FromStaff)

	fromStaff, err := svc.AddMessage(ctx, operator, true, ticket.ID, "on it")
	require.NoError(t, err)
	require.True(t, fromStaff.FromStaff)

	stored, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.False(t, stored.UpdatedAt.Before(createdAt))

	_, msgs, err := svc.GetTicket(ctx, submitterA, false, ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
}

func TestMessagesForTickets(t *testing.T) {
	svc, _, _ := newTicketFixture()
	ctx := context.Background()

	first, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "first"})
	require.NoError(t, err)
	second, err := svc.CreateTicket(ctx, submitterA, TicketCreateInput{Subject: "second"})
	require.NoError(t, err)

	_, err = svc.AddMessage(ctx, submitterA, false, first.ID, "hello")
	require.NoError(t, err)

	byTicket, err := svc.MessagesForTickets(ctx, []domain.SupportTicket{*first, *second})
	require.NoError(t, err)
	require.Len(t, byTicket[first.ID], 1)
	require.Empty(t, byTicket[second.ID])
}
