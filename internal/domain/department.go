package domain

import "time"

// Department is a static lookup entity used to route support tickets.
type Department struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
