package domain

import "time"

// HistoryAction classifies what a history entry records.
type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionAssigned      HistoryAction = "ASSIGNED"
	ActionCommented     HistoryAction = "COMMENTED"
	ActionResolved      HistoryAction = "RESOLVED"
	ActionReopened      HistoryAction = "REOPENED"
)

// HistoryEntry is one immutable audit record for a ticket. Field, OldValue
// and NewValue are set for field-level changes and left nil for actions
// that do not touch a tracked field (created, commented). Seq is assigned
// at append time and fixes the order of entries sharing one timestamp,
// such as the assigned/status-changed pair of a first assignment.
type HistoryEntry struct {
	ID          string
	Seq         int64
	TicketID    string
	Action      HistoryAction
	Field       *TicketField
	OldValue    *string
	NewValue    *string
	PerformedBy string
	CreatedAt   time.Time
}
