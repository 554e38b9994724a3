// Package policy holds the role/ownership decision table gating every
// ticket and category mutation. It is pure: no I/O, no side effects, so
// it tests without persistence. Callers establish isOwner by comparing
// the actor id with the ticket's SubmittedBy before consulting it.
package policy

import "github.com/feedbackhub/feedback-tracker/internal/domain"

// clientStatusTargets are the only statuses a client may set on an owned
// ticket. Everything else (new, in-progress, resolved) is staff-only.
var clientStatusTargets = map[domain.TicketStatus]struct{}{
	domain.TicketStatusClosed:   {},
	domain.TicketStatusReopened: {},
}

// clientFields are the tracked fields a client may edit on an owned
// ticket. Assignment and status are governed separately.
var clientFields = map[domain.TicketField]struct{}{
	domain.FieldTitle:       {},
	domain.FieldDescription: {},
	domain.FieldCategory:    {},
	domain.FieldPriority:    {},
	domain.FieldTags:        {},
	domain.FieldAttachments: {},
}

// CanView reports whether the actor may read a ticket.
func CanView(role domain.Role, isOwner bool) bool {
	if role.IsStaff() {
		return true
	}
	return isOwner
}

// CanMutateField reports whether the actor may change the given tracked
// field. Status is not a plain field here; use CanSetStatus for it.
func CanMutateField(role domain.Role, isOwner bool, field domain.TicketField) bool {
	if role.IsStaff() {
		return true
	}
	if !isOwner {
		return false
	}
	_, ok := clientFields[field]
	return ok
}

// CanSetStatus reports whether the actor may move a ticket to the target
// status. The state machine itself forbids nothing; legality lives here.
func CanSetStatus(role domain.Role, isOwner bool, target domain.TicketStatus) bool {
	if role.IsStaff() {
		return true
	}
	if !isOwner {
		return false
	}
	_, ok := clientStatusTargets[target]
	return ok
}

// CanAssign reports whether the actor may set a ticket's assignee.
func CanAssign(role domain.Role) bool {
	return role.IsStaff()
}

// CanComment reports whether the actor may comment on a ticket.
func CanComment(role domain.Role, isOwner bool) bool {
	return CanView(role, isOwner)
}

// CanManageCategories reports whether the actor may create, edit or
// deactivate categories. Admin-only regardless of ownership.
func CanManageCategories(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanDeleteTicket reports whether the actor may hard-delete a ticket.
// Admin-only regardless of ownership.
func CanDeleteTicket(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanViewAnalytics reports whether the actor may query analytics. Clients
// may, restricted to their own tickets by the invoking layer.
func CanViewAnalytics(role domain.Role) bool {
	return true
}

// CanExport reports whether the actor may run data exports.
func CanExport(role domain.Role) bool {
	return role.IsStaff()
}
