package domain

import "time"

// TaskStatus enumerates the task workflow states.
type TaskStatus string

const (
	TaskStatusPending            TaskStatus = "pending"
	TaskStatusInProgress         TaskStatus = "in-progress"
	TaskStatusReadyForReview     TaskStatus = "ready-for-review"
	TaskStatusRevisionsRequested TaskStatus = "revisions-requested"
	TaskStatusApproved           TaskStatus = "approved"
	TaskStatusComplete           TaskStatus = "complete"
)

// Task belongs to exactly one project. FloorPosition is the per-project
// display ordering key, assigned as max+1 at creation and never mutated
// afterwards. Version is an optimistic stamp bumped on every update.
type Task struct {
	ID              string
	ProjectID       string
	Title           string
	Description     string
	Status          TaskStatus
	AssigneeID      *string
	DueDate         *time.Time
	FloorPosition   int
	DeliverableLink *string
	ReviewComments  *string
	Completion      int
	Priority        Priority
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
