// Package tracker converts mutation intent into new ticket state plus
// immutable audit entries. Every function takes the loaded snapshot and
// the acting identity explicitly and touches no storage: the caller
// holds the pre-mutation snapshot, diffs are computed against it, and
// nothing is committed here. Rejected mutations produce no entries.
package tracker

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// ChangeSet carries proposed field assignments for an update. Nil fields
// are left untouched; a present field equal to the snapshot value is a
// traceable no-op and records nothing.
type ChangeSet struct {
	Title       *string
	Description *string
	CategoryID  *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	Tags        *[]string
	Attachments *[]domain.Attachment
}

// Fields returns the tracked fields the change set proposes to touch,
// for authorization checks ahead of ApplyUpdate.
func (c ChangeSet) Fields() []domain.TicketField {
	fields := make([]domain.TicketField, 0, 7)
	if c.Title != nil {
		fields = append(fields, domain.FieldTitle)
	}
	if c.Description != nil {
		fields = append(fields, domain.FieldDescription)
	}
	if c.CategoryID != nil {
		fields = append(fields, domain.FieldCategory)
	}
	if c.Priority != nil {
		fields = append(fields, domain.FieldPriority)
	}
	if c.Status != nil {
		fields = append(fields, domain.FieldStatus)
	}
	if c.Tags != nil {
		fields = append(fields, domain.FieldTags)
	}
	if c.Attachments != nil {
		fields = append(fields, domain.FieldAttachments)
	}
	return fields
}

// CreateInput describes a new ticket. Category resolution happens in the
// calling layer; the id here must already be known to exist.
type CreateInput struct {
	Title       string
	Description string
	CategoryID  string
	Priority    domain.TicketPriority
	Status      *domain.TicketStatus
	Tags        []string
	Attachments []domain.Attachment
}

// ApplyCreate constructs a new ticket and its single created entry,
// authored by the submitter. The store assigns id and timestamps on
// commit; the caller stamps the entry's ticket id afterwards.
func ApplyCreate(in CreateInput, submitter domain.Actor, now time.Time) (*domain.Ticket, domain.HistoryEntry, error) {
	title := strings.TrimSpace(in.Title)
	if err := validateTitle(title); err != nil {
		return nil, domain.HistoryEntry{}, err
	}
	description := strings.TrimSpace(in.Description)
	if err := validateDescription(description); err != nil {
		return nil, domain.HistoryEntry{}, err
	}
	if in.CategoryID == "" {
		return nil, domain.HistoryEntry{}, errFieldRequired(domain.FieldCategory)
	}
	if in.Priority == "" {
		return nil, domain.HistoryEntry{}, errFieldRequired(domain.FieldPriority)
	}
	if !in.Priority.Valid() {
		return nil, domain.HistoryEntry{}, errInvalidEnum(domain.FieldPriority, string(in.Priority))
	}

	status := domain.TicketStatusNew
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, domain.HistoryEntry{}, errInvalidEnum(domain.FieldStatus, string(*in.Status))
		}
		status = *in.Status
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		CategoryID:  in.CategoryID,
		Priority:    in.Priority,
		Status:      domain.TicketStatusNew,
		SubmittedBy: submitter.ID,
		Tags:        normalizeTags(in.Tags),
		Attachments: append([]domain.Attachment(nil), in.Attachments...),
	}
	if status != domain.TicketStatusNew {
		stampStatus(ticket, status, now)
	}

	entry := domain.HistoryEntry{
		Action:      domain.ActionCreated,
		PerformedBy: submitter.ID,
		CreatedAt:   now,
	}
	return ticket, entry, nil
}

// ApplyUpdate diffs the proposed fields against the snapshot, producing
// the new state and one entry per field that actually changed. Status
// changes classify as status-changed and update derived timestamps; all
// other fields classify as updated. A change set that alters nothing
// returns the cloned snapshot with zero entries.
func ApplyUpdate(snapshot *domain.Ticket, changes ChangeSet, actor domain.Actor, now time.Time) (*domain.Ticket, []domain.HistoryEntry, error) {
	next := snapshot.Clone()
	var entries []domain.HistoryEntry

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if title != snapshot.Title {
			if err := validateTitle(title); err != nil {
				return nil, nil, err
			}
			next.Title = title
			entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldTitle, strPtr(snapshot.Title), strPtr(title), actor, now))
		}
	}
	if changes.Description != nil {
		description := strings.TrimSpace(*changes.Description)
		if description != snapshot.Description {
			if err := validateDescription(description); err != nil {
				return nil, nil, err
			}
			next.Description = description
			entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldDescription, strPtr(snapshot.Description), strPtr(description), actor, now))
		}
	}
	if changes.CategoryID != nil && *changes.CategoryID != snapshot.CategoryID {
		if *changes.CategoryID == "" {
			return nil, nil, errFieldRequired(domain.FieldCategory)
		}
		next.CategoryID = *changes.CategoryID
		entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldCategory, strPtr(snapshot.CategoryID), strPtr(*changes.CategoryID), actor, now))
	}
	if changes.Priority != nil && *changes.Priority != snapshot.Priority {
		if !changes.Priority.Valid() {
			return nil, nil, errInvalidEnum(domain.FieldPriority, string(*changes.Priority))
		}
		next.Priority = *changes.Priority
		entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldPriority, strPtr(string(snapshot.Priority)), strPtr(string(*changes.Priority)), actor, now))
	}
	if changes.Status != nil && *changes.Status != snapshot.Status {
		if !changes.Status.Valid() {
			return nil, nil, errInvalidEnum(domain.FieldStatus, string(*changes.Status))
		}
		stampStatus(next, *changes.Status, now)
		entries = append(entries, fieldEntry(domain.ActionStatusChanged, domain.FieldStatus, strPtr(string(snapshot.Status)), strPtr(string(*changes.Status)), actor, now))
	}
	if changes.Tags != nil {
		tags := normalizeTags(*changes.Tags)
		if !sameTagSet(snapshot.Tags, tags) {
			next.Tags = tags
			// Array fields record a full replacement, not a per-element diff.
			entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldTags, strPtr(joinTags(snapshot.Tags)), strPtr(joinTags(tags)), actor, now))
		}
	}
	if changes.Attachments != nil {
		replacement := append([]domain.Attachment(nil), *changes.Attachments...)
		if !sameAttachments(snapshot.Attachments, replacement) {
			next.Attachments = replacement
			entries = append(entries, fieldEntry(domain.ActionUpdated, domain.FieldAttachments, strPtr(describeAttachments(snapshot.Attachments)), strPtr(describeAttachments(replacement)), actor, now))
		}
	}

	return next, entries, nil
}

// ApplyComment appends to the conversation thread and records one
// commented entry. Body must be non-empty after trimming.
func ApplyComment(snapshot *domain.Ticket, body string, attachments []domain.Attachment, actor domain.Actor, now time.Time) (*domain.Comment, domain.HistoryEntry, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.HistoryEntry{}, errCommentEmpty()
	}
	comment := &domain.Comment{
		TicketID:    snapshot.ID,
		AuthorID:    actor.ID,
		Body:        body,
		Attachments: append([]domain.Attachment(nil), attachments...),
		CreatedAt:   now,
	}
	entry := domain.HistoryEntry{
		TicketID:    snapshot.ID,
		Action:      domain.ActionCommented,
		NewValue:    strPtr(Preview(body, 120)),
		PerformedBy: actor.ID,
		CreatedAt:   now,
	}
	return comment, entry, nil
}

// ApplyAssign sets the assignee. A ticket still in NEW additionally
// moves to IN_PROGRESS, recorded as a second, separate status-changed
// entry after the assigned one. Re-assigning the current assignee is a
// no-op with zero entries.
func ApplyAssign(snapshot *domain.Ticket, assigneeID string, actor domain.Actor, now time.Time) (*domain.Ticket, []domain.HistoryEntry, error) {
	if assigneeID == "" {
		return nil, nil, errFieldRequired(domain.FieldAssignee)
	}
	if snapshot.AssignedTo != nil && *snapshot.AssignedTo == assigneeID {
		return snapshot.Clone(), nil, nil
	}

	next := snapshot.Clone()
	next.AssignedTo = &assigneeID

	entries := []domain.HistoryEntry{
		fieldEntry(domain.ActionAssigned, domain.FieldAssignee, snapshot.AssignedTo, strPtr(assigneeID), actor, now),
	}
	if snapshot.Status == domain.TicketStatusNew {
		stampStatus(next, domain.TicketStatusInProgress, now)
		entries = append(entries, fieldEntry(domain.ActionStatusChanged, domain.FieldStatus, strPtr(string(snapshot.Status)), strPtr(string(domain.TicketStatusInProgress)), actor, now))
	}
	return next, entries, nil
}

// stampStatus moves the ticket to the target status and sets the derived
// timestamp for statuses that carry one. Timestamps are cumulative: a
// later transition never clears an earlier one.
func stampStatus(t *domain.Ticket, target domain.TicketStatus, now time.Time) {
	t.Status = target
	moment := now
	switch target {
	case domain.TicketStatusResolved:
		t.ResolvedAt = &moment
	case domain.TicketStatusClosed:
		t.ClosedAt = &moment
	case domain.TicketStatusReopened:
		t.ReopenedAt = &moment
	}
}

func fieldEntry(action domain.HistoryAction, field domain.TicketField, oldValue, newValue *string, actor domain.Actor, now time.Time) domain.HistoryEntry {
	f := field
	return domain.HistoryEntry{
		Action:      action,
		Field:       &f,
		OldValue:    oldValue,
		NewValue:    newValue,
		PerformedBy: actor.ID,
		CreatedAt:   now,
	}
}

func strPtr(s string) *string {
	return &s
}

func normalizeTags(tags []string) []string {
	result := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}

func sameTagSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := set[tag]; !ok {
			return false
		}
	}
	return true
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func sameAttachments(a, b []domain.Attachment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].StorageKey != b[i].StorageKey || a[i].FileName != b[i].FileName {
			return false
		}
	}
	return true
}

func describeAttachments(attachments []domain.Attachment) string {
	return fmt.Sprintf("%d file(s)", len(attachments))
}

// Preview truncates body for audit records and event payloads. The cut
// lands on a rune boundary so multi-byte text stays valid UTF-8.
func Preview(body string, max int) string {
	if utf8.RuneCountInString(body) <= max {
		return body
	}
	runes := []rune(body)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
