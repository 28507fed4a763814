package domain

import "time"

// TicketStatus enumerates lifecycle states for support tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// SupportTicket is the aggregate for support requests. Visibility is
// submitter-scoped for regular users; privileged operators see all tickets.
type SupportTicket struct {
	ID           string
	ExternalKey  string
	SubmitterID  string
	Subject      string
	Description  string
	Status       TicketStatus
	Priority     Priority
	DepartmentID *string
	AssigneeID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resolved reports whether the ticket reached a terminal resolution state.
func (t *SupportTicket) Resolved() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusClosed
}

// TicketMessage is an append-only thread entry on a ticket.
type TicketMessage struct {
	ID        string
	TicketID  string
	AuthorID  string
	FromStaff bool
	Body      string
	CreatedAt time.Time
}
