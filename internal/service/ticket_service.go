package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/events"
	"github.com/spec-kit/project-service/internal/repository"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// TicketService coordinates support-ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.TicketMessageRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Subject      string
	Description  string
	Priority     domain.Priority
	DepartmentID *string
}

// TicketAdminPatch carries the privileged update; nil fields are untouched.
type TicketAdminPatch struct {
	Status       *domain.TicketStatus
	Priority     *domain.Priority
	DepartmentID *string
}

// TicketListFilter describes listing filters applied on top of visibility.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.Priority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
	}
}

var ticketTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func ticketTransitionAllowed(current, next domain.TicketStatus) bool {
	for _, candidate := range ticketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreateTicket opens a ticket for any authenticated principal.
func (s *TicketService) CreateTicket(ctx context.Context, submitterID string, input TicketCreateInput) (*domain.SupportTicket, error) {
	subject := strings.TrimSpace(input.Subject)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject required", nil)
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *input.DepartmentID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	ticket := &domain.SupportTicket{
		ExternalKey:  generateTicketKey(),
		SubmitterID:  submitterID,
		Subject:      subject,
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Priority:     input.Priority,
		DepartmentID: input.DepartmentID,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		ActorID:   submitterID,
	})
	return ticket, nil
}

// ListTickets applies the visibility rule: non-privileged principals see
// only tickets they submitted.
func (s *TicketService) ListTickets(ctx context.Context, actorID string, privileged bool, filter TicketListFilter) ([]domain.SupportTicket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if !privileged {
		repoFilter.SubmitterID = &actorID
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

const defaultTicketPageSize = 500

// CollectTickets walks the filtered listing page by page until the window is
// exhausted. Report readers use this instead of a single capped query so a
// large collection is never silently truncated.
func (s *TicketService) CollectTickets(ctx context.Context, actorID string, privileged bool, filter TicketListFilter, pageSize int) ([]domain.SupportTicket, error) {
	if pageSize <= 0 {
		pageSize = defaultTicketPageSize
	}
	var all []domain.SupportTicket
	for offset := filter.Offset; ; offset += pageSize {
		page := filter
		page.Limit = pageSize
		page.Offset = offset
		batch, err := s.ListTickets(ctx, actorID, privileged, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < pageSize {
			return all, nil
		}
	}
}

// GetTicket fetches a ticket with its message thread.
func (s *TicketService) GetTicket(ctx context.Context, actorID string, privileged bool, ticketID string) (*domain.SupportTicket, []domain.TicketMessage, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !privileged && ticket.SubmitterID != actorID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, msgs, nil
}

// AssignToSelf claims an unassigned ticket for the operator. The second
// claimant loses: an existing assignee is a conflict, not a reassignment.
func (s *TicketService) AssignToSelf(ctx context.Context, operatorID string, privileged bool, ticketID string) (*domain.SupportTicket, error) {
	if !privileged {
		return nil, apperrors.NewForbidden("operator role required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.AssigneeID != nil {
		return nil, apperrors.NewAlreadyAssigned("ticket", map[string]any{
			"ticket_id":   ticket.ID,
			"assignee_id": *ticket.AssigneeID,
		})
	}

	// The conditional write decides the race; the read above only provides
	// the friendlier not-found and already-assigned errors.
	claimed, err := s.tickets.Claim(ctx, ticket.ID, operatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAlreadyAssigned("ticket", map[string]any{"ticket_id": ticket.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		SubjectID: claimed.ID,
		ActorID:   operatorID,
		Payload:   events.TicketAssignedPayload{AssigneeID: operatorID},
	})
	return claimed, nil
}

// AdminUpdate applies the privileged status/priority/department update.
// Routing an open ticket to a department moves it to in_progress.
func (s *TicketService) AdminUpdate(ctx context.Context, actorID string, actorRole domain.GlobalRole, ticketID string, patch TicketAdminPatch) (*domain.SupportTicket, error) {
	if actorRole != domain.GlobalRoleSuperAdmin {
		return nil, apperrors.NewForbidden("super admin required")
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status

	if patch.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *patch.DepartmentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("department", map[string]any{"department_id": *patch.DepartmentID})
			}
			return nil, apperrors.MapError(err)
		}
		newlyRouted := ticket.DepartmentID == nil || *ticket.DepartmentID != *patch.DepartmentID
		ticket.DepartmentID = patch.DepartmentID
		if newlyRouted && ticket.Status == domain.TicketStatusOpen {
			ticket.Status = domain.TicketStatusInProgress
		}
	}
	if patch.Priority != nil {
		ticket.Priority = *patch.Priority
	}
	if patch.Status != nil && *patch.Status != ticket.Status {
		if !ticketTransitionAllowed(ticket.Status, *patch.Status) {
			return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(*patch.Status))
		}
		ticket.Status = *patch.Status
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			SubjectID: ticket.ID,
			ActorID:   actorID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// AddMessage appends a thread entry and stamps the ticket's updated_at.
// Participants are the submitter and privileged operators.
func (s *TicketService) AddMessage(ctx context.Context, actorID string, privileged bool, ticketID, body string) (*domain.TicketMessage, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !privileged && ticket.SubmitterID != actorID {
		return nil, apperrors.NewForbidden("access denied")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body required", nil)
	}

	msg := &domain.TicketMessage{
		TicketID:  ticket.ID,
		AuthorID:  actorID,
		FromStaff: privileged && actorID != ticket.SubmitterID,
		Body:      body,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.Touch(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketMessageAdded,
		SubjectID: ticket.ID,
		ActorID:   actorID,
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			FromStaff:   msg.FromStaff,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return msg, nil
}

// ListDepartments returns the routing lookup.
func (s *TicketService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return departments, nil
}

// MessagesForTickets loads the threads for a ticket collection, keyed by
// ticket id. Used by the analytics read side.
func (s *TicketService) MessagesForTickets(ctx context.Context, tickets []domain.SupportTicket) (map[string][]domain.TicketMessage, error) {
	result := make(map[string][]domain.TicketMessage, len(tickets))
	for i := range tickets {
		msgs, err := s.messages.ListByTicket(ctx, tickets[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result[tickets[i].ID] = msgs
	}
	return result, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
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
