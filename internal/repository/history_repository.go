package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// TicketHistoryRepository stores the append-only audit trail. Entries
// from one mutation are appended together after the ticket commit and
// read back in seq order, so multi-entry mutations keep their order
// even though the entries share one created_at.
type TicketHistoryRepository interface {
	Append(ctx context.Context, entries []domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds the repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Append(ctx context.Context, entries []domain.HistoryEntry) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, action, field, old_value, new_value, performed_by, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, seq`
	for i := range entries {
		entry := &entries[i]
		if err := r.pool.QueryRow(ctx, query,
			entry.TicketID,
			entry.Action,
			entry.Field,
			entry.OldValue,
			entry.NewValue,
			entry.PerformedBy,
			entry.CreatedAt,
		).Scan(&entry.ID, &entry.Seq); err != nil {
			return err
		}
	}
	return nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, seq, ticket_id, action, field, old_value, new_value, performed_by, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.Seq,
			&entry.TicketID,
			&entry.Action,
			&entry.Field,
			&entry.OldValue,
			&entry.NewValue,
			&entry.PerformedBy,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
