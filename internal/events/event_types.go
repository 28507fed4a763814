package events

import (
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProjectCreated         EventType = "project_created"
	EventMemberInvited          EventType = "member_invited"
	EventOwnershipTransferred   EventType = "ownership_transferred"
	EventTaskCreated            EventType = "task_created"
	EventTaskStatusChanged      EventType = "task_status_changed"
	EventTaskApproved           EventType = "task_approved"
	EventTaskRevisionsRequested EventType = "task_revisions_requested"
	EventTicketCreated          EventType = "ticket_created"
	EventTicketStatusChanged    EventType = "ticket_status_changed"
	EventTicketAssigned         EventType = "ticket_assigned"
	EventTicketMessageAdded     EventType = "ticket_message_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// MemberInvitedPayload payload.
type MemberInvitedPayload struct {
	ProjectID string             `json:"project_id"`
	UserID    string             `json:"user_id"`
	Role      domain.ProjectRole `json:"role"`
}

// OwnershipTransferredPayload payload.
type OwnershipTransferredPayload struct {
	ProjectID  string `json:"project_id"`
	OldOwnerID string `json:"old_owner_id"`
	NewOwnerID string `json:"new_owner_id"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	ProjectID string            `json:"project_id"`
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
	Comments  string            `json:"comments,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string `json:"message_id"`
	FromStaff   bool   `json:"from_staff"`
	BodyPreview string `json:"body_preview"`
}
