package tracker

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

var (
	submitter = domain.Actor{ID: "user-1", Role: domain.RoleClient}
	agent     = domain.Actor{ID: "staff-1", Role: domain.RoleSupport}
	baseTime  = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
)

func newTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, entry, err := ApplyCreate(CreateInput{
		Title:       "Login page broken",
		Description: "The login page returns a 500 error on submit.",
		CategoryID:  "cat-1",
		Priority:    domain.TicketPriorityHigh,
	}, submitter, baseTime)
	require.NoError(t, err)
	ticket.ID = "ticket-1"
	entry.TicketID = ticket.ID
	return ticket
}

func TestApplyCreate(t *testing.T) {
	ticket, entry, err := ApplyCreate(CreateInput{
		Title:       "Login page broken",
		Description: "The login page returns a 500 error on submit.",
		CategoryID:  "cat-1",
		Priority:    domain.TicketPriorityHigh,
		Tags:        []string{" auth ", "web", "auth", ""},
	}, submitter, baseTime)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, submitter.ID, ticket.SubmittedBy)
	assert.Equal(t, []string{"auth", "web"}, ticket.Tags)
	assert.Nil(t, ticket.ResolvedAt)

	assert.Equal(t, domain.ActionCreated, entry.Action)
	assert.Equal(t, ticket.SubmittedBy, entry.PerformedBy)
	assert.Nil(t, entry.Field)
}

func TestApplyCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		in    CreateInput
		field string
	}{
		{
			name:  "title too short",
			in:    CreateInput{Title: "Bug", Description: "long enough description", CategoryID: "cat-1", Priority: domain.TicketPriorityLow},
			field: "title",
		},
		{
			name:  "description too short",
			in:    CreateInput{Title: "Something broke", Description: "short", CategoryID: "cat-1", Priority: domain.TicketPriorityLow},
			field: "description",
		},
		{
			name:  "missing category",
			in:    CreateInput{Title: "Something broke", Description: "long enough description", Priority: domain.TicketPriorityLow},
			field: "category",
		},
		{
			name:  "missing priority",
			in:    CreateInput{Title: "Something broke", Description: "long enough description", CategoryID: "cat-1"},
			field: "priority",
		},
		{
			name:  "bad priority",
			in:    CreateInput{Title: "Something broke", Description: "long enough description", CategoryID: "cat-1", Priority: "URGENT"},
			field: "priority",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ApplyCreate(tt.in, submitter, baseTime)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
		})
	}
}

func TestApplyCreateWithExplicitStatus(t *testing.T) {
	status := domain.TicketStatusResolved
	ticket, _, err := ApplyCreate(CreateInput{
		Title:       "Imported resolved ticket",
		Description: "Migrated from the legacy tracker.",
		CategoryID:  "cat-1",
		Priority:    domain.TicketPriorityLow,
		Status:      &status,
	}, submitter, baseTime)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, baseTime, *ticket.ResolvedAt)
}

func TestApplyUpdateOneEntryPerChangedField(t *testing.T) {
	snapshot := newTicket(t)

	title := "Login page still broken"
	priority := domain.TicketPriorityCritical
	next, entries, err := ApplyUpdate(snapshot, ChangeSet{
		Title:    &title,
		Priority: &priority,
	}, agent, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, title, next.Title)
	assert.Equal(t, priority, next.Priority)
	// Snapshot is never mutated.
	assert.Equal(t, "Login page broken", snapshot.Title)
	assert.Equal(t, domain.TicketPriorityHigh, snapshot.Priority)

	assert.Equal(t, domain.ActionUpdated, entries[0].Action)
	assert.Equal(t, domain.FieldTitle, *entries[0].Field)
	assert.Equal(t, "Login page broken", *entries[0].OldValue)
	assert.Equal(t, title, *entries[0].NewValue)
	assert.Equal(t, agent.ID, entries[0].PerformedBy)
	assert.Equal(t, domain.FieldPriority, *entries[1].Field)
}

func TestApplyUpdateNoOp(t *testing.T) {
	snapshot := newTicket(t)

	sameTitle := snapshot.Title
	samePriority := snapshot.Priority
	next, entries, err := ApplyUpdate(snapshot, ChangeSet{
		Title:    &sameTitle,
		Priority: &samePriority,
	}, agent, baseTime.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, snapshot.Title, next.Title)
}

func TestApplyUpdateIdempotence(t *testing.T) {
	snapshot := newTicket(t)
	title := "Login page throws 500"
	changes := ChangeSet{Title: &title}

	first, entries, err := ApplyUpdate(snapshot, changes, agent, baseTime.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, second, err := ApplyUpdate(first, changes, agent, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestApplyUpdateStatusChange(t *testing.T) {
	snapshot := newTicket(t)
	resolved := domain.TicketStatusResolved
	when := baseTime.Add(3 * time.Hour)

	next, entries, err := ApplyUpdate(snapshot, ChangeSet{Status: &resolved}, agent, when)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, domain.ActionStatusChanged, entries[0].Action)
	assert.Equal(t, domain.FieldStatus, *entries[0].Field)
	assert.Equal(t, string(domain.TicketStatusNew), *entries[0].OldValue)
	assert.Equal(t, string(domain.TicketStatusResolved), *entries[0].NewValue)

	require.NotNil(t, next.ResolvedAt)
	assert.Equal(t, when, *next.ResolvedAt)
	assert.Nil(t, next.ClosedAt)
}

func TestDerivedTimestampsNeverCleared(t *testing.T) {
	snapshot := newTicket(t)
	resolved := domain.TicketStatusResolved
	reopened := domain.TicketStatusReopened

	resolvedState, _, err := ApplyUpdate(snapshot, ChangeSet{Status: &resolved}, agent, baseTime.Add(time.Hour))
	require.NoError(t, err)
	resolvedAt := *resolvedState.ResolvedAt

	reopenedState, entries, err := ApplyUpdate(resolvedState, ChangeSet{Status: &reopened}, submitter, baseTime.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NotNil(t, reopenedState.ResolvedAt)
	assert.Equal(t, resolvedAt, *reopenedState.ResolvedAt)
	require.NotNil(t, reopenedState.ReopenedAt)
	assert.Equal(t, baseTime.Add(2*time.Hour), *reopenedState.ReopenedAt)
}

func TestApplyUpdateTagsFullReplacement(t *testing.T) {
	snapshot := newTicket(t)
	snapshot.Tags = []string{"auth", "web"}

	reordered := []string{"web", "auth"}
	_, entries, err := ApplyUpdate(snapshot, ChangeSet{Tags: &reordered}, agent, baseTime)
	require.NoError(t, err)
	assert.Empty(t, entries, "same tag set in different order is not a change")

	replaced := []string{"auth", "regression"}
	next, entries, err := ApplyUpdate(snapshot, ChangeSet{Tags: &replaced}, agent, baseTime)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "auth,web", *entries[0].OldValue)
	assert.Equal(t, "auth,regression", *entries[0].NewValue)
	assert.Equal(t, replaced, next.Tags)
}

func TestApplyUpdateAttachmentsRecordedAsCount(t *testing.T) {
	snapshot := newTicket(t)
	replacement := []domain.Attachment{
		{FileName: "screenshot.png", StorageKey: "k1", MimeType: "image/png", SizeBytes: 1024},
	}
	next, entries, err := ApplyUpdate(snapshot, ChangeSet{Attachments: &replacement}, agent, baseTime)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0 file(s)", *entries[0].OldValue)
	assert.Equal(t, "1 file(s)", *entries[0].NewValue)
	assert.Len(t, next.Attachments, 1)
}

func TestApplyUpdateRejectsInvalidValues(t *testing.T) {
	snapshot := newTicket(t)

	shortTitle := "Bug"
	_, entries, err := ApplyUpdate(snapshot, ChangeSet{Title: &shortTitle}, agent, baseTime)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Nil(t, entries, "rejected updates produce no entries")

	badStatus := domain.TicketStatus("ARCHIVED")
	_, _, err = ApplyUpdate(snapshot, ChangeSet{Status: &badStatus}, agent, baseTime)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestApplyComment(t *testing.T) {
	snapshot := newTicket(t)

	comment, entry, err := ApplyComment(snapshot, "  We are looking into it.  ", nil, agent, baseTime.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "We are looking into it.", comment.Body)
	assert.Equal(t, agent.ID, comment.AuthorID)
	assert.Equal(t, snapshot.ID, comment.TicketID)

	assert.Equal(t, domain.ActionCommented, entry.Action)
	assert.Nil(t, entry.Field)
	assert.Equal(t, agent.ID, entry.PerformedBy)

	_, _, err = ApplyComment(snapshot, "   ", nil, agent, baseTime)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestApplyCommentPreviewCutsOnRuneBoundary(t *testing.T) {
	snapshot := newTicket(t)

	body := strings.Repeat("ü", 200)
	_, entry, err := ApplyComment(snapshot, body, nil, agent, baseTime)
	require.NoError(t, err)

	require.NotNil(t, entry.NewValue)
	assert.True(t, utf8.ValidString(*entry.NewValue))
	assert.Equal(t, 120, utf8.RuneCountInString(*entry.NewValue))
	assert.True(t, strings.HasSuffix(*entry.NewValue, "..."))
}

func TestPreviewKeepsShortBodiesIntact(t *testing.T) {
	assert.Equal(t, "all good", Preview("all good", 120))
	assert.True(t, utf8.ValidString(Preview(strings.Repeat("é", 5), 3)))
}

func TestApplyAssignAutoTransitions(t *testing.T) {
	snapshot := newTicket(t)

	next, entries, err := ApplyAssign(snapshot, "staff-1", agent, baseTime.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 2, "assignment of a NEW ticket records assigned then status-changed")

	assert.Equal(t, domain.ActionAssigned, entries[0].Action)
	assert.Nil(t, entries[0].OldValue)
	assert.Equal(t, "staff-1", *entries[0].NewValue)

	assert.Equal(t, domain.ActionStatusChanged, entries[1].Action)
	assert.Equal(t, string(domain.TicketStatusNew), *entries[1].OldValue)
	assert.Equal(t, string(domain.TicketStatusInProgress), *entries[1].NewValue)

	require.NotNil(t, next.AssignedTo)
	assert.Equal(t, "staff-1", *next.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, next.Status)
}

func TestApplyAssignNoAutoTransitionWhenNotNew(t *testing.T) {
	snapshot := newTicket(t)
	snapshot.Status = domain.TicketStatusInProgress
	existing := "staff-1"
	snapshot.AssignedTo = &existing

	next, entries, err := ApplyAssign(snapshot, "staff-2", agent, baseTime)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAssigned, entries[0].Action)
	assert.Equal(t, "staff-1", *entries[0].OldValue)
	assert.Equal(t, "staff-2", *next.AssignedTo)
	assert.Equal(t, domain.TicketStatusInProgress, next.Status)
}

func TestApplyAssignSameAssigneeIsNoOp(t *testing.T) {
	snapshot := newTicket(t)
	existing := "staff-1"
	snapshot.AssignedTo = &existing
	snapshot.Status = domain.TicketStatusInProgress

	next, entries, err := ApplyAssign(snapshot, "staff-1", agent, baseTime)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "staff-1", *next.AssignedTo)
}

func TestChangeSetFields(t *testing.T) {
	title := "A reasonable title"
	status := domain.TicketStatusClosed
	tags := []string{"a"}
	changes := ChangeSet{Title: &title, Status: &status, Tags: &tags}
	assert.Equal(t, []domain.TicketField{domain.FieldTitle, domain.FieldStatus, domain.FieldTags}, changes.Fields())
}
