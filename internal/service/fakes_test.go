package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// In-memory repository fakes. They mirror the persistence contracts,
// including pgx.ErrNoRows for missing rows and the optimistic save
// check on updated_at.

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *fakeTicketRepo) Save(_ context.Context, ticket *domain.Ticket, snapshotUpdatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(snapshotUpdatedAt) {
		return apperrors.NewConflict("ticket modified concurrently", nil)
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return ticket.Clone(), nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.SubmittedBy != nil && ticket.SubmittedBy != *filter.SubmittedBy {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssigneeID) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, ticket.Priority) {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !containsString(filter.CategoryIDs, ticket.CategoryID) {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if filter.SearchTerm != nil {
			term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
			if term != "" &&
				!strings.Contains(strings.ToLower(ticket.Title), term) &&
				!strings.Contains(strings.ToLower(ticket.Description), term) {
				continue
			}
		}
		matched = append(matched, *ticket.Clone())
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := len(matched)
	if filter.Offset > 0 && filter.Offset < len(matched) {
		matched = matched[filter.Offset:]
	} else if filter.Offset >= len(matched) {
		matched = nil
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *fakeTicketRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ticket := range r.tickets {
		if ticket.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(priorities []domain.TicketPriority, priority domain.TicketPriority) bool {
	for _, p := range priorities {
		if p == priority {
			return true
		}
	}
	return false
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []domain.HistoryEntry
}

func (r *fakeHistoryRepo) Append(_ context.Context, entries []domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.seq++
		entry.ID = fmt.Sprintf("history-%d", r.seq)
		entry.Seq = r.seq
		r.entries = append(r.entries, entry)
	}
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HistoryEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result, nil
}

type fakeCategoryRepo struct {
	mu         sync.Mutex
	seq        int
	categories map[string]*domain.Category
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[string]*domain.Category{}}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.categories {
		if existing.Name == category.Name {
			return apperrors.NewConflict("duplicate category name", nil)
		}
	}
	r.seq++
	category.ID = fmt.Sprintf("category-%d", r.seq)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) List(_ context.Context, activeOnly bool) ([]domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Category
	for _, category := range r.categories {
		if activeOnly && !category.IsActive {
			continue
		}
		result = append(result, *category)
	}
	return result, nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.categories, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*domain.User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = fmt.Sprintf("comment-%d", len(r.comments)+1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	mu        sync.Mutex
	byTicket  map[string][]domain.Attachment
	byComment map[string][]domain.Attachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{
		byTicket:  map[string][]domain.Attachment{},
		byComment: map[string][]domain.Attachment{},
	}
}

func (r *fakeAttachmentRepo) CreateForTicket(_ context.Context, ticketID string, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = fmt.Sprintf("attachment-%d", len(r.byTicket[ticketID])+1)
	r.byTicket[ticketID] = append(r.byTicket[ticketID], *attachment)
	return nil
}

func (r *fakeAttachmentRepo) CreateForComment(_ context.Context, _ string, commentID string, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment.ID = fmt.Sprintf("comment-attachment-%d", len(r.byComment[commentID])+1)
	r.byComment[commentID] = append(r.byComment[commentID], *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Attachment{}, r.byTicket[ticketID]...), nil
}

func (r *fakeAttachmentRepo) ListByComment(_ context.Context, commentID string) ([]domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Attachment{}, r.byComment[commentID]...), nil
}

func (r *fakeAttachmentRepo) ReplaceForTicket(_ context.Context, ticketID string, attachments []domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTicket[ticketID] = append([]domain.Attachment{}, attachments...)
	return nil
}

func (r *fakeAttachmentRepo) StorageKeysByTicket(_ context.Context, ticketID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for _, attachment := range r.byTicket[ticketID] {
		keys = append(keys, attachment.StorageKey)
	}
	return keys, nil
}

type fakeExportLogRepo struct {
	mu   sync.Mutex
	seq  int
	logs []domain.ExportLog
}

func (r *fakeExportLogRepo) Create(_ context.Context, log *domain.ExportLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	log.ID = fmt.Sprintf("export-%d", r.seq)
	log.CreatedAt = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeExportLogRepo) MarkCompleted(_ context.Context, id, fileName string, sizeBytes int64, ticketCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			now := time.Now()
			r.logs[i].Status = domain.ExportStatusCompleted
			r.logs[i].FileName = fileName
			r.logs[i].SizeBytes = sizeBytes
			r.logs[i].TicketCount = ticketCount
			r.logs[i].CompletedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeExportLogRepo) MarkFailed(_ context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.logs {
		if r.logs[i].ID == id {
			now := time.Now()
			r.logs[i].Status = domain.ExportStatusFailed
			r.logs[i].Error = &reason
			r.logs[i].CompletedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeExportLogRepo) ListByRequester(_ context.Context, userID string, limit int) ([]domain.ExportLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ExportLog
	for i := len(r.logs) - 1; i >= 0 && len(result) < limit; i-- {
		if r.logs[i].RequestedBy == userID {
			result = append(result, r.logs[i])
		}
	}
	return result, nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	removed []string
}

func (f *fakeFileStore) Remove(_ context.Context, storageKeys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, storageKeys...)
	return nil
}
