package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// ExportLogRepository records export provenance, separate from the
// ticket audit trail.
type ExportLogRepository interface {
	Create(ctx context.Context, log *domain.ExportLog) error
	MarkCompleted(ctx context.Context, id, fileName string, sizeBytes int64, ticketCount int) error
	MarkFailed(ctx context.Context, id, reason string) error
	ListByRequester(ctx context.Context, userID string, limit int) ([]domain.ExportLog, error)
}

type exportLogRepository struct {
	pool *pgxpool.Pool
}

// NewExportLogRepository constructs the repository.
func NewExportLogRepository(pool *pgxpool.Pool) ExportLogRepository {
	return &exportLogRepository{pool: pool}
}

func (r *exportLogRepository) Create(ctx context.Context, log *domain.ExportLog) error {
	const query = `
        INSERT INTO export_logs (requested_by, format, status)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		log.RequestedBy,
		log.Format,
		log.Status,
	).Scan(&log.ID, &log.CreatedAt)
}

func (r *exportLogRepository) MarkCompleted(ctx context.Context, id, fileName string, sizeBytes int64, ticketCount int) error {
	const query = `
        UPDATE export_logs SET status=$1, file_name=$2, size_bytes=$3, ticket_count=$4, completed_at=NOW()
        WHERE id=$5`
	_, err := r.pool.Exec(ctx, query, domain.ExportStatusCompleted, fileName, sizeBytes, ticketCount, id)
	return err
}

func (r *exportLogRepository) MarkFailed(ctx context.Context, id, reason string) error {
	const query = `
        UPDATE export_logs SET status=$1, error=$2, completed_at=NOW()
        WHERE id=$3`
	_, err := r.pool.Exec(ctx, query, domain.ExportStatusFailed, reason, id)
	return err
}

func (r *exportLogRepository) ListByRequester(ctx context.Context, userID string, limit int) ([]domain.ExportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
        SELECT id, requested_by, format, status, COALESCE(file_name, ''), COALESCE(size_bytes, 0),
               COALESCE(ticket_count, 0), error, created_at, completed_at
        FROM export_logs WHERE requested_by=$1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ExportLog
	for rows.Next() {
		var log domain.ExportLog
		if err := rows.Scan(
			&log.ID,
			&log.RequestedBy,
			&log.Format,
			&log.Status,
			&log.FileName,
			&log.SizeBytes,
			&log.TicketCount,
			&log.Error,
			&log.CreatedAt,
			&log.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
