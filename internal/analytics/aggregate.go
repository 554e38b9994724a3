// Package analytics computes read-only summaries over a filtered ticket
// record set. Every function is a pure fold over records already fetched
// from the store: no storage engine query language leaks in here, and
// nothing is ever mutated or committed. Long aggregations honor caller
// cancellation via the context.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

// Record is the projection of a ticket the aggregator needs. The store
// layer produces these, including the first-comment timestamp.
type Record struct {
	TicketID       string
	Status         domain.TicketStatus
	Priority       domain.TicketPriority
	CategoryID     string
	CategoryName   string
	CreatedAt      time.Time
	ResolvedAt     *time.Time
	FirstCommentAt *time.Time
}

// ResponseTime is the delay between creation and the first comment.
// Undefined when the ticket has no comments.
func (r Record) ResponseTime() (time.Duration, bool) {
	if r.FirstCommentAt == nil {
		return 0, false
	}
	return r.FirstCommentAt.Sub(r.CreatedAt), true
}

// ResolutionTime is the delay between creation and first resolution.
// Defined only for tickets that have reached resolved at least once.
func (r Record) ResolutionTime() (time.Duration, bool) {
	if r.ResolvedAt == nil {
		return 0, false
	}
	return r.ResolvedAt.Sub(r.CreatedAt), true
}

// Overview summarizes a ticket set. Averages cover only tickets for
// which the underlying duration is defined; they are zero when no ticket
// qualifies.
type Overview struct {
	Total                 int
	StatusDistribution    map[domain.TicketStatus]int
	PriorityDistribution  map[domain.TicketPriority]int
	AverageResponseTime   time.Duration
	AverageResolutionTime time.Duration
}

// CategoryCount is one row of the category distribution.
type CategoryCount struct {
	CategoryName string
	Count        int
}

// TrendPoint is one calendar-day bucket of the creation trend.
type TrendPoint struct {
	Date  string // ISO calendar date, e.g. 2025-03-10
	Count int
}

// ResponseStats summarizes response times for one priority.
type ResponseStats struct {
	Average time.Duration
	Min     time.Duration
	Max     time.Duration
	Samples int
}

// checkEvery bounds how often aggregation loops poll for cancellation.
const checkEvery = 256

// BuildOverview computes totals, distributions and average response and
// resolution times. Status counts always sum to Total.
func BuildOverview(ctx context.Context, records []Record) (*Overview, error) {
	overview := &Overview{
		StatusDistribution:   make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		PriorityDistribution: make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
	}
	for _, status := range domain.TicketStatuses {
		overview.StatusDistribution[status] = 0
	}
	for _, priority := range domain.TicketPriorities {
		overview.PriorityDistribution[priority] = 0
	}

	var responseTotal, resolutionTotal time.Duration
	var responseCount, resolutionCount int

	for i, record := range records {
		if err := pollCancelled(ctx, i); err != nil {
			return nil, err
		}
		overview.Total++
		overview.StatusDistribution[record.Status]++
		overview.PriorityDistribution[record.Priority]++
		if d, ok := record.ResponseTime(); ok {
			responseTotal += d
			responseCount++
		}
		if d, ok := record.ResolutionTime(); ok {
			resolutionTotal += d
			resolutionCount++
		}
	}

	if responseCount > 0 {
		overview.AverageResponseTime = responseTotal / time.Duration(responseCount)
	}
	if resolutionCount > 0 {
		overview.AverageResolutionTime = resolutionTotal / time.Duration(resolutionCount)
	}
	return overview, nil
}

// CategoryDistribution counts tickets per category, sorted by count
// descending. Ties keep the order categories were first seen.
func CategoryDistribution(ctx context.Context, records []Record) ([]CategoryCount, error) {
	counts := map[string]int{}
	order := []string{}
	names := map[string]string{}

	for i, record := range records {
		if err := pollCancelled(ctx, i); err != nil {
			return nil, err
		}
		if _, seen := counts[record.CategoryID]; !seen {
			order = append(order, record.CategoryID)
			names[record.CategoryID] = record.CategoryName
		}
		counts[record.CategoryID]++
	}

	result := make([]CategoryCount, 0, len(order))
	for _, id := range order {
		result = append(result, CategoryCount{CategoryName: names[id], Count: counts[id]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result, nil
}

// TimeTrend buckets ticket creation per calendar day (UTC), ascending.
// Days with no tickets are omitted, not zero-filled.
func TimeTrend(ctx context.Context, records []Record) ([]TrendPoint, error) {
	counts := map[string]int{}
	for i, record := range records {
		if err := pollCancelled(ctx, i); err != nil {
			return nil, err
		}
		day := record.CreatedAt.UTC().Format("2006-01-02")
		counts[day]++
	}

	result := make([]TrendPoint, 0, len(counts))
	for day, count := range counts {
		result = append(result, TrendPoint{Date: day, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}

// ResponsePerformance computes avg/min/max response time per priority,
// over tickets with at least one comment. Priorities with no qualifying
// tickets are absent from the result.
func ResponsePerformance(ctx context.Context, records []Record) (map[domain.TicketPriority]ResponseStats, error) {
	result := map[domain.TicketPriority]ResponseStats{}
	totals := map[domain.TicketPriority]time.Duration{}

	for i, record := range records {
		if err := pollCancelled(ctx, i); err != nil {
			return nil, err
		}
		d, ok := record.ResponseTime()
		if !ok {
			continue
		}
		stats, seen := result[record.Priority]
		if !seen {
			stats = ResponseStats{Min: d, Max: d}
		} else {
			if d < stats.Min {
				stats.Min = d
			}
			if d > stats.Max {
				stats.Max = d
			}
		}
		stats.Samples++
		totals[record.Priority] += d
		result[record.Priority] = stats
	}

	for priority, stats := range result {
		stats.Average = totals[priority] / time.Duration(stats.Samples)
		result[priority] = stats
	}
	return result, nil
}

func pollCancelled(ctx context.Context, i int) error {
	if i%checkEvery == 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
