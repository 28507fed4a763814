package dto

import (
	"time"

	"github.com/spec-kit/project-service/internal/domain"
)

// CreateTaskRequest payload.
type CreateTaskRequest struct {
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	AssigneeID      *string         `json:"assignee_id,omitempty"`
	DueDate         *time.Time      `json:"due_date,omitempty"`
	DeliverableLink *string         `json:"deliverable_link,omitempty"`
	Priority        domain.Priority `json:"priority"`
}

// UpdateTaskStatusRequest payload.
type UpdateTaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// RequestRevisionsRequest payload.
type RequestRevisionsRequest struct {
	Comments string `json:"comments"`
}

// CommentRequest payload for add/edit.
type CommentRequest struct {
	Content string `json:"content"`
}

// TaskResponse is the task representation.
type TaskResponse struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"project_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	Status          domain.TaskStatus `json:"status"`
	AssigneeID      *string           `json:"assignee_id,omitempty"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	FloorPosition   int               `json:"floor_position"`
	DeliverableLink *string           `json:"deliverable_link,omitempty"`
	ReviewComments  *string           `json:"review_comments,omitempty"`
	Completion      int               `json:"completion"`
	Priority        domain.Priority   `json:"priority"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CommentResponse is the comment representation.
type CommentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
