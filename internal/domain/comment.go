package domain

import "time"

// Comment is a task discussion entry. Editable and deletable only by its
// author.
type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
