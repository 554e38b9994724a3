package domain

import "time"

// Comment is one entry in a ticket's append-only conversation thread.
type Comment struct {
	ID          string
	TicketID    string
	AuthorID    string
	Body        string
	Attachments []Attachment
	CreatedAt   time.Time
}
