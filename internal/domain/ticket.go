package domain

import "time"

// TicketStatus enumerates lifecycle states for feedback items.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// TicketStatuses lists every valid status value.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusReopened,
}

// Valid reports whether the status is a known value.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// TicketPriorities lists every valid priority value.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// TicketField names a tracked field on a ticket. History entries and the
// authorization policy both key on these names.
type TicketField string

const (
	FieldTitle       TicketField = "title"
	FieldDescription TicketField = "description"
	FieldCategory    TicketField = "category"
	FieldPriority    TicketField = "priority"
	FieldStatus      TicketField = "status"
	FieldAssignee    TicketField = "assigned_to"
	FieldTags        TicketField = "tags"
	FieldAttachments TicketField = "attachments"
)

// Ticket is the aggregate for submitted feedback items.
type Ticket struct {
	ID          string
	Title       string
	Description string
	CategoryID  string
	Priority    TicketPriority
	Status      TicketStatus
	SubmittedBy string
	AssignedTo  *string
	Tags        []string
	Attachments []Attachment
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
	ReopenedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy so a mutation never aliases the loaded snapshot.
func (t *Ticket) Clone() *Ticket {
	copied := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		copied.AssignedTo = &v
	}
	copied.ResolvedAt = cloneTime(t.ResolvedAt)
	copied.ClosedAt = cloneTime(t.ClosedAt)
	copied.ReopenedAt = cloneTime(t.ReopenedAt)
	if t.Tags != nil {
		copied.Tags = append([]string(nil), t.Tags...)
	}
	if t.Attachments != nil {
		copied.Attachments = append([]Attachment(nil), t.Attachments...)
	}
	return &copied
}

// IsOwner reports whether the given user submitted this ticket.
func (t *Ticket) IsOwner(userID string) bool {
	return t.SubmittedBy == userID
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Attachment stores metadata for a file kept in the external file store.
type Attachment struct {
	ID         string
	FileName   string
	StorageKey string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}
