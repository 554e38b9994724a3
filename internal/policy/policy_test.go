package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

var staffRoles = []domain.Role{
	domain.RoleSupport,
	domain.RoleDeveloper,
	domain.RoleQA,
	domain.RoleManager,
	domain.RoleAdmin,
}

func TestCanSetStatus(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		isOwner bool
		target  domain.TicketStatus
		want    bool
	}{
		{"client closes own ticket", domain.RoleClient, true, domain.TicketStatusClosed, true},
		{"client reopens own ticket", domain.RoleClient, true, domain.TicketStatusReopened, true},
		{"client cannot mark in-progress", domain.RoleClient, true, domain.TicketStatusInProgress, false},
		{"client cannot resolve", domain.RoleClient, true, domain.TicketStatusResolved, false},
		{"client cannot reset to new", domain.RoleClient, true, domain.TicketStatusNew, false},
		{"client cannot close foreign ticket", domain.RoleClient, false, domain.TicketStatusClosed, false},
		{"support resolves", domain.RoleSupport, false, domain.TicketStatusResolved, true},
		{"qa reopens foreign ticket", domain.RoleQA, false, domain.TicketStatusReopened, true},
		{"admin sets any status", domain.RoleAdmin, false, domain.TicketStatusNew, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanSetStatus(tt.role, tt.isOwner, tt.target))
		})
	}
}

func TestCanMutateField(t *testing.T) {
	tests := []struct {
		name    string
		role    domain.Role
		isOwner bool
		field   domain.TicketField
		want    bool
	}{
		{"client edits own title", domain.RoleClient, true, domain.FieldTitle, true},
		{"client edits own tags", domain.RoleClient, true, domain.FieldTags, true},
		{"client edits own priority", domain.RoleClient, true, domain.FieldPriority, true},
		{"client cannot edit foreign title", domain.RoleClient, false, domain.FieldTitle, false},
		{"client cannot assign", domain.RoleClient, true, domain.FieldAssignee, false},
		{"client cannot set status as field", domain.RoleClient, true, domain.FieldStatus, false},
		{"developer edits foreign description", domain.RoleDeveloper, false, domain.FieldDescription, true},
		{"manager assigns", domain.RoleManager, false, domain.FieldAssignee, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutateField(tt.role, tt.isOwner, tt.field))
		})
	}
}

func TestStaffMayDoEverythingOnTickets(t *testing.T) {
	for _, role := range staffRoles {
		for _, field := range []domain.TicketField{
			domain.FieldTitle, domain.FieldDescription, domain.FieldCategory,
			domain.FieldPriority, domain.FieldAssignee, domain.FieldTags, domain.FieldAttachments,
		} {
			assert.True(t, CanMutateField(role, false, field), "role %s field %s", role, field)
		}
		for _, status := range domain.TicketStatuses {
			assert.True(t, CanSetStatus(role, false, status), "role %s status %s", role, status)
		}
		assert.True(t, CanAssign(role), "role %s", role)
		assert.True(t, CanExport(role), "role %s", role)
	}
}

func TestAdminOnlyOperations(t *testing.T) {
	assert.True(t, CanManageCategories(domain.RoleAdmin))
	assert.True(t, CanDeleteTicket(domain.RoleAdmin))
	for _, role := range []domain.Role{domain.RoleClient, domain.RoleSupport, domain.RoleDeveloper, domain.RoleQA, domain.RoleManager} {
		assert.False(t, CanManageCategories(role), "role %s", role)
		assert.False(t, CanDeleteTicket(role), "role %s", role)
	}
}

func TestClientVisibility(t *testing.T) {
	assert.True(t, CanView(domain.RoleClient, true))
	assert.False(t, CanView(domain.RoleClient, false))
	assert.False(t, CanAssign(domain.RoleClient))
	assert.False(t, CanExport(domain.RoleClient))
	assert.True(t, CanComment(domain.RoleClient, true))
	assert.False(t, CanComment(domain.RoleClient, false))
}
