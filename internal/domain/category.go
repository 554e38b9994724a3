package domain

import "time"

// Category groups tickets for triage and reporting. Categories referenced
// by tickets are deactivated rather than deleted.
type Category struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
