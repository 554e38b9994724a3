package dto

import (
	"time"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	CategoryID  string                 `json:"category_id"`
	Priority    domain.TicketPriority  `json:"priority"`
	Status      *domain.TicketStatus   `json:"status,omitempty"`
	Tags        []string               `json:"tags"`
	Attachments []AttachmentRequest    `json:"attachments"`
}

// UpdateTicketRequest carries a partial change set. Absent fields are
// left untouched.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	CategoryID  *string                `json:"category_id"`
	Priority    *domain.TicketPriority `json:"priority"`
	Status      *domain.TicketStatus   `json:"status"`
	Tags        *[]string              `json:"tags"`
	Attachments *[]AttachmentRequest   `json:"attachments"`
}

// ChangeStatusRequest payload.
type ChangeStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body        string              `json:"body"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes attachment input.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         string                `json:"id"`
	Title      string                `json:"title"`
	CategoryID string                `json:"category_id"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	AssignedTo *string               `json:"assigned_to"`
	Tags       []string              `json:"tags"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	CategoryID  string                `json:"category_id"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	SubmittedBy string                `json:"submitted_by"`
	AssignedTo  *string               `json:"assigned_to"`
	Tags        []string              `json:"tags"`
	Attachments []AttachmentResponse  `json:"attachments"`
	Comments    []CommentResponse     `json:"comments"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	ResolvedAt  *time.Time            `json:"resolved_at"`
	ClosedAt    *time.Time            `json:"closed_at"`
	ReopenedAt  *time.Time            `json:"reopened_at"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"author_id"`
	Body        string               `json:"body"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// HistoryEntryResponse represents one audit trail entry.
type HistoryEntryResponse struct {
	ID          string               `json:"id"`
	Action      domain.HistoryAction `json:"action"`
	Field       *domain.TicketField  `json:"field"`
	OldValue    *string              `json:"old_value"`
	NewValue    *string              `json:"new_value"`
	PerformedBy string               `json:"performed_by"`
	CreatedAt   time.Time            `json:"created_at"`
}

// TicketListResponse wraps a paginated listing.
type TicketListResponse struct {
	Items    []TicketSummary `json:"items"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}
