package domain

import "time"

// ProjectStatus enumerates lifecycle states for projects.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

// Priority is shared by projects, tasks and tickets.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Project is the aggregate root for a workspace of tasks and members.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	Priority    Priority
	Progress    int
	DueDate     *time.Time
	Budget      *float64
	Tags        []string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
