package dto

import (
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject      string          `json:"subject"`
	Description  string          `json:"description"`
	Priority     domain.Priority `json:"priority"`
	DepartmentID *string         `json:"department_id,omitempty"`
}

// AdminUpdateTicketRequest payload; nil fields are untouched.
type AdminUpdateTicketRequest struct {
	Status       *domain.TicketStatus `json:"status,omitempty"`
	Priority     *domain.Priority     `json:"priority,omitempty"`
	DepartmentID *string              `json:"department_id,omitempty"`
}

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Body string `json:"body"`
}

// TicketSummary is the list representation.
type TicketSummary struct {
	ID           string              `json:"id"`
	ExternalKey  string              `json:"external_key"`
	SubmitterID  string              `json:"submitter_id"`
	Subject      string              `json:"subject"`
	Status       domain.TicketStatus `json:"status"`
	Priority     domain.Priority     `json:"priority"`
	DepartmentID *string             `json:"department_id,omitempty"`
	AssigneeID   *string             `json:"assignee_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TicketDetailResponse includes the message thread.
type TicketDetailResponse struct {
	TicketSummary
	Description string                  `json:"description"`
	Messages    []TicketMessageResponse `json:"messages"`
}

// TicketMessageResponse is the thread entry representation.
type TicketMessageResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	FromStaff bool      `json:"from_staff"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentResponse is the routing lookup representation.
type DepartmentResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
