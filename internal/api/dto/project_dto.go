package dto

import (
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Budget      *float64        `json:"budget,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// UpdateProjectRequest payload; nil fields are untouched.
type UpdateProjectRequest struct {
	Name        *string               `json:"name,omitempty"`
	Description *string               `json:"description,omitempty"`
	Status      *domain.ProjectStatus `json:"status,omitempty"`
	Priority    *domain.Priority      `json:"priority,omitempty"`
	Progress    *int                  `json:"progress,omitempty"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	Budget      *float64              `json:"budget,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
}

// InviteMemberRequest payload.
type InviteMemberRequest struct {
	Email string             `json:"email"`
	Role  domain.ProjectRole `json:"role"`
}

// TransferOwnershipRequest payload.
type TransferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id"`
}

// ProjectResponse is the project representation.
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Priority    domain.Priority      `json:"priority"`
	Progress    int                  `json:"progress"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
	Budget      *float64             `json:"budget,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	OwnerID     string               `json:"owner_id"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// MemberResponse is the membership representation.
type MemberResponse struct {
	ID        string             `json:"id"`
	ProjectID string             `json:"project_id"`
	UserID    string             `json:"user_id"`
	Role      domain.ProjectRole `json:"role"`
	InvitedBy *string            `json:"invited_by,omitempty"`
	InvitedAt time.Time          `json:"invited_at"`
	JoinedAt  *time.Time         `json:"joined_at,omitempty"`
}
