package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/events"
	"github.com/feedbackhub/feedback-tracker/internal/policy"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	"github.com/feedbackhub/feedback-tracker/internal/tracker"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// FileStore removes stored attachment bytes. Implemented by the
// external file store; ticket deletion cascades through it.
type FileStore interface {
	Remove(ctx context.Context, storageKeys []string) error
}

// TicketService coordinates every ticket mutation: load snapshot,
// authorize, run the tracker, commit, then publish. History entries are
// computed in memory and discarded whenever the save fails.
type TicketService struct {
	tickets     repository.TicketRepository
	categories  repository.CategoryRepository
	users       repository.UserRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
	files       FileStore
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CategoryRepo   repository.CategoryRepository
	UserRepo       repository.UserRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	HistoryRepo    repository.TicketHistoryRepository
	Dispatcher     events.Dispatcher
	Files          FileStore
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CategoryIDs []string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		categories:  deps.CategoryRepo,
		users:       deps.UserRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		files:       deps.Files,
	}
}

// Create submits a new ticket for the actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input tracker.CreateInput) (*domain.Ticket, error) {
	if input.CategoryID != "" {
		if err := s.resolveCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	ticket, entry, err := tracker.ApplyCreate(input, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range ticket.Attachments {
		if err := s.attachments.CreateForTicket(ctx, ticket.ID, &ticket.Attachments[i]); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	entry.TicketID = ticket.ID
	if err := s.history.Append(ctx, []domain.HistoryEntry{entry}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor,
		Payload: events.TicketCreatedPayload{
			CategoryID: ticket.CategoryID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// Get fetches a ticket with its attachments and comment thread,
// enforcing ownership for client actors.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanView(actor.Role, ticket.IsOwner(actor.ID)) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	comments, err := s.commentsWithAttachments(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, comments, nil
}

// List returns paginated tickets with the total match count. Clients
// are implicitly restricted to their own submissions.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, int, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CategoryIDs: filter.CategoryIDs,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	}
	if actor.Role == domain.RoleClient {
		owner := actor.ID
		repoFilter.SubmittedBy = &owner
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	repoFilter.Limit = pageSize
	repoFilter.Offset = (page - 1) * pageSize

	tickets, total, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// Update applies a partial field change set against the loaded snapshot.
// Authorization runs per proposed field before the tracker touches
// anything; a change set that alters nothing commits nothing.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, ticketID string, changes tracker.ChangeSet) (*domain.Ticket, error) {
	snapshot, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	isOwner := snapshot.IsOwner(actor.ID)
	for _, field := range changes.Fields() {
		if field == domain.FieldStatus {
			if !policy.CanSetStatus(actor.Role, isOwner, *changes.Status) {
				return nil, apperrors.NewForbidden("status change not permitted for role")
			}
			continue
		}
		if !policy.CanMutateField(actor.Role, isOwner, field) {
			return nil, apperrors.NewForbidden("field change not permitted for role")
		}
	}

	if changes.CategoryID != nil && *changes.CategoryID != snapshot.CategoryID {
		if err := s.resolveCategory(ctx, *changes.CategoryID); err != nil {
			return nil, err
		}
	}

	next, entries, err := tracker.ApplyUpdate(snapshot, changes, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return snapshot, nil
	}

	if err := s.tickets.Save(ctx, next, snapshot.UpdatedAt); err != nil {
		return nil, apperrors.MapError(err)
	}
	if changes.Attachments != nil {
		if err := s.attachments.ReplaceForTicket(ctx, next.ID, next.Attachments); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.appendHistory(ctx, next.ID, entries); err != nil {
		return nil, err
	}

	s.publishEntryEvents(ctx, actor, next, entries)
	return next, nil
}

// ChangeStatus moves a ticket to the target status.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	return s.Update(ctx, actor, ticketID, tracker.ChangeSet{Status: &target})
}

// Assign sets the ticket's assignee to a staff user. A NEW ticket also
// moves to IN_PROGRESS as a second recorded change.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, ticketID, assigneeID string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor.Role) {
		return nil, apperrors.NewForbidden("assignment requires a staff role")
	}
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Role.IsStaff() {
		return nil, apperrors.NewValidationError("assignee must be a staff user", map[string]any{"user_id": assigneeID})
	}
	if assignee.Status != domain.UserStatusActive {
		return nil, apperrors.NewConflict("assignee suspended", map[string]any{"user_id": assigneeID})
	}

	snapshot, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	next, entries, err := tracker.ApplyAssign(snapshot, assigneeID, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return next, nil
	}

	if err := s.tickets.Save(ctx, next, snapshot.UpdatedAt); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.appendHistory(ctx, next.ID, entries); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: next.ID,
		Actor:    actor,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	if next.Status != snapshot.Status {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: next.ID,
			Actor:    actor,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: snapshot.Status,
				NewStatus: next.Status,
			},
		})
	}
	return next, nil
}

// AddComment appends to the conversation thread.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, body string, attachments []domain.Attachment) (*domain.Comment, error) {
	snapshot, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor.Role, snapshot.IsOwner(actor.ID)) {
		return nil, apperrors.NewForbidden("access denied")
	}

	comment, entry, err := tracker.ApplyComment(snapshot, body, attachments, actor, time.Now())
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range comment.Attachments {
		if err := s.attachments.CreateForComment(ctx, snapshot.ID, comment.ID, &comment.Attachments[i]); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if err := s.appendHistory(ctx, snapshot.ID, []domain.HistoryEntry{entry}); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCommented,
		TicketID: snapshot.ID,
		Actor:    actor,
		Payload: events.TicketCommentedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			BodyPreview: tracker.Preview(comment.Body, 120),
		},
	})
	return comment, nil
}

// History returns the ordered audit trail, ownership-checked for
// client actors.
func (s *TicketService) History(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.HistoryEntry, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor.Role, ticket.IsOwner(actor.ID)) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Delete hard-deletes a ticket (admin only) and cascades attachment
// cleanup through the file store.
func (s *TicketService) Delete(ctx context.Context, actor domain.Actor, ticketID string) error {
	if !policy.CanDeleteTicket(actor.Role) {
		return apperrors.NewForbidden("ticket deletion is admin-only")
	}
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return err
	}
	keys, err := s.attachments.StorageKeysByTicket(ctx, ticketID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return apperrors.MapError(err)
	}
	if s.files != nil && len(keys) > 0 {
		// Best effort: rows are gone, orphaned bytes are acceptable.
		_ = s.files.Remove(ctx, keys)
	}
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Attachments = attachments
	return ticket, nil
}

func (s *TicketService) resolveCategory(ctx context.Context, categoryID string) error {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewFieldValidationError(string(domain.FieldCategory), "category does not exist")
		}
		return apperrors.MapError(err)
	}
	if !category.IsActive {
		return apperrors.NewFieldValidationError(string(domain.FieldCategory), "category is inactive")
	}
	return nil
}

func (s *TicketService) commentsWithAttachments(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range comments {
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		comments[i].Attachments = attachments
	}
	return comments, nil
}

func (s *TicketService) appendHistory(ctx context.Context, ticketID string, entries []domain.HistoryEntry) error {
	for i := range entries {
		entries[i].TicketID = ticketID
	}
	if err := s.history.Append(ctx, entries); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// publishEntryEvents emits one event per status change plus a single
// ticket_updated event covering the remaining changed fields.
func (s *TicketService) publishEntryEvents(ctx context.Context, actor domain.Actor, ticket *domain.Ticket, entries []domain.HistoryEntry) {
	var updatedFields []domain.TicketField
	for _, entry := range entries {
		if entry.Action == domain.ActionStatusChanged && entry.OldValue != nil && entry.NewValue != nil {
			s.publish(ctx, events.Event{
				Type:     events.StatusEventType(domain.TicketStatus(*entry.NewValue)),
				TicketID: ticket.ID,
				Actor:    actor,
				Payload: events.TicketStatusChangedPayload{
					OldStatus: domain.TicketStatus(*entry.OldValue),
					NewStatus: domain.TicketStatus(*entry.NewValue),
				},
			})
			continue
		}
		if entry.Field != nil {
			updatedFields = append(updatedFields, *entry.Field)
		}
	}
	if len(updatedFields) > 0 {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			Actor:    actor,
			Payload:  events.TicketUpdatedPayload{Fields: updatedFields},
		})
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
