package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/feedbackhub/feedback-tracker/internal/analytics"
	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// AnalyticsFilter narrows the record set the aggregator reads. Same
// predicates as TicketFilter, without pagination.
type AnalyticsFilter struct {
	SubmittedBy *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	CategoryIDs []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AnalyticsRepository projects committed tickets into aggregation
// records. Read-only: it observes whatever state exists at query time.
type AnalyticsRepository interface {
	FetchRecords(ctx context.Context, filter AnalyticsFilter) ([]analytics.Record, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository constructs the repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) FetchRecords(ctx context.Context, filter AnalyticsFilter) ([]analytics.Record, error) {
	clauses, args := buildTicketClauses(TicketFilter{
		SubmittedBy: filter.SubmittedBy,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CategoryIDs: filter.CategoryIDs,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
	})
	for i := range clauses {
		clauses[i] = qualifyTicketClause(clauses[i])
	}

	query := fmt.Sprintf(`
        SELECT t.id, t.status, t.priority, t.category_id, c.name, t.created_at, t.resolved_at,
               (SELECT MIN(tc.created_at) FROM ticket_comments tc WHERE tc.ticket_id = t.id)
        FROM tickets t
        JOIN categories c ON c.id = t.category_id
        WHERE %s
        ORDER BY t.created_at ASC`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []analytics.Record
	for rows.Next() {
		var record analytics.Record
		if err := rows.Scan(
			&record.TicketID,
			&record.Status,
			&record.Priority,
			&record.CategoryID,
			&record.CategoryName,
			&record.CreatedAt,
			&record.ResolvedAt,
			&record.FirstCommentAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

// qualifyTicketClause prefixes bare ticket columns so the shared clause
// builder works inside the joined analytics query.
func qualifyTicketClause(clause string) string {
	if clause == "1=1" {
		return clause
	}
	for _, column := range []string{"submitted_by", "assigned_to", "status", "priority", "category_id", "created_at"} {
		if strings.HasPrefix(clause, column) {
			return "t." + clause
		}
	}
	return clause
}
