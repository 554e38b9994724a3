package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// AttachmentRepository persists attachment metadata. An attachment hangs
// off a ticket directly or off one of its comments.
type AttachmentRepository interface {
	CreateForTicket(ctx context.Context, ticketID string, attachment *domain.Attachment) error
	CreateForComment(ctx context.Context, ticketID, commentID string, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error)
	ListByComment(ctx context.Context, commentID string) ([]domain.Attachment, error)
	ReplaceForTicket(ctx context.Context, ticketID string, attachments []domain.Attachment) error
	StorageKeysByTicket(ctx context.Context, ticketID string) ([]string, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) CreateForTicket(ctx context.Context, ticketID string, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, comment_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,NULL,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticketID,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) CreateForComment(ctx context.Context, ticketID, commentID string, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, comment_id, storage_key, file_name, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticketID,
		commentID,
		attachment.StorageKey,
		attachment.FileName,
		attachment.MimeType,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.CreatedAt)
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, storage_key, file_name, mime_type, size_bytes, created_at
        FROM attachments WHERE ticket_id=$1 AND comment_id IS NULL ORDER BY created_at ASC`
	return r.list(ctx, query, ticketID)
}

func (r *attachmentRepository) ListByComment(ctx context.Context, commentID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, storage_key, file_name, mime_type, size_bytes, created_at
        FROM attachments WHERE comment_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, commentID)
}

// ReplaceForTicket swaps a ticket's direct attachment set for the given
// list. Comment attachments are untouched.
func (r *attachmentRepository) ReplaceForTicket(ctx context.Context, ticketID string, attachments []domain.Attachment) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM attachments WHERE ticket_id=$1 AND comment_id IS NULL`, ticketID); err != nil {
		return err
	}
	for i := range attachments {
		if err := r.CreateForTicket(ctx, ticketID, &attachments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *attachmentRepository) StorageKeysByTicket(ctx context.Context, ticketID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT storage_key FROM attachments WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *attachmentRepository) list(ctx context.Context, query string, arg any) ([]domain.Attachment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttachments(rows)
}

func scanAttachments(rows pgx.Rows) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.StorageKey,
			&attachment.FileName,
			&attachment.MimeType,
			&attachment.SizeBytes,
			&attachment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
