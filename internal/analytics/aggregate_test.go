package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
)

func ts(day int, hour int) time.Time {
	return time.Date(2025, 3, day, hour, 0, 0, 0, time.UTC)
}

func tsPtr(day int, hour int) *time.Time {
	v := ts(day, hour)
	return &v
}

func TestBuildOverview(t *testing.T) {
	records := []Record{
		{TicketID: "t1", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh,
			CreatedAt: ts(1, 9), ResolvedAt: tsPtr(1, 13), FirstCommentAt: tsPtr(1, 10)},
		{TicketID: "t2", Status: domain.TicketStatusNew, Priority: domain.TicketPriorityLow,
			CreatedAt: ts(1, 11)},
		{TicketID: "t3", Status: domain.TicketStatusResolved, Priority: domain.TicketPriorityHigh,
			CreatedAt: ts(2, 9), ResolvedAt: tsPtr(2, 11), FirstCommentAt: tsPtr(2, 12)},
	}

	overview, err := BuildOverview(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 3, overview.Total)
	assert.Equal(t, 2, overview.StatusDistribution[domain.TicketStatusResolved])
	assert.Equal(t, 1, overview.StatusDistribution[domain.TicketStatusNew])
	assert.Equal(t, 0, overview.StatusDistribution[domain.TicketStatusClosed])

	sum := 0
	for _, count := range overview.StatusDistribution {
		sum += count
	}
	assert.Equal(t, overview.Total, sum, "status distribution sums to total")

	// t2 has no comments and is excluded, not counted as zero:
	// (1h + 3h) / 2 = 2h.
	assert.Equal(t, 2*time.Hour, overview.AverageResponseTime)
	// (4h + 2h) / 2 = 3h over resolved tickets only.
	assert.Equal(t, 3*time.Hour, overview.AverageResolutionTime)
}

func TestBuildOverviewEmpty(t *testing.T) {
	overview, err := BuildOverview(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, overview.Total)
	assert.Zero(t, overview.AverageResponseTime)
	assert.Zero(t, overview.AverageResolutionTime)
}

func TestCategoryDistribution(t *testing.T) {
	records := []Record{
		{TicketID: "t1", CategoryID: "c1", CategoryName: "Billing", CreatedAt: ts(1, 9)},
		{TicketID: "t2", CategoryID: "c2", CategoryName: "Login", CreatedAt: ts(1, 9)},
		{TicketID: "t3", CategoryID: "c1", CategoryName: "Billing", CreatedAt: ts(1, 9)},
		{TicketID: "t4", CategoryID: "c3", CategoryName: "Crashes", CreatedAt: ts(1, 9)},
	}

	result, err := CategoryDistribution(context.Background(), records)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, CategoryCount{CategoryName: "Billing", Count: 2}, result[0])
	// Tie between Login and Crashes keeps first-seen order.
	assert.Equal(t, CategoryCount{CategoryName: "Login", Count: 1}, result[1])
	assert.Equal(t, CategoryCount{CategoryName: "Crashes", Count: 1}, result[2])
}

func TestTimeTrend(t *testing.T) {
	records := []Record{
		{TicketID: "t1", CreatedAt: ts(4, 9)},
		{TicketID: "t2", CreatedAt: ts(1, 9)},
		{TicketID: "t3", CreatedAt: ts(1, 23)},
		{TicketID: "t4", CreatedAt: ts(2, 0)},
	}

	result, err := TimeTrend(context.Background(), records)
	require.NoError(t, err)
	// March 3 has no tickets and is omitted.
	assert.Equal(t, []TrendPoint{
		{Date: "2025-03-01", Count: 2},
		{Date: "2025-03-02", Count: 1},
		{Date: "2025-03-04", Count: 1},
	}, result)
}

func TestResponsePerformance(t *testing.T) {
	records := []Record{
		{TicketID: "t1", Priority: domain.TicketPriorityHigh, CreatedAt: ts(1, 9), FirstCommentAt: tsPtr(1, 10)},
		{TicketID: "t2", Priority: domain.TicketPriorityHigh, CreatedAt: ts(1, 9), FirstCommentAt: tsPtr(1, 12)},
		{TicketID: "t3", Priority: domain.TicketPriorityLow, CreatedAt: ts(1, 9)},
		{TicketID: "t4", Priority: domain.TicketPriorityCritical, CreatedAt: ts(1, 9), FirstCommentAt: tsPtr(1, 9)},
	}

	result, err := ResponsePerformance(context.Background(), records)
	require.NoError(t, err)

	high := result[domain.TicketPriorityHigh]
	assert.Equal(t, 2, high.Samples)
	assert.Equal(t, time.Hour, high.Min)
	assert.Equal(t, 3*time.Hour, high.Max)
	assert.Equal(t, 2*time.Hour, high.Average)

	critical := result[domain.TicketPriorityCritical]
	assert.Equal(t, 1, critical.Samples)
	assert.Zero(t, critical.Min)

	_, ok := result[domain.TicketPriorityLow]
	assert.False(t, ok, "priorities without commented tickets are absent")
}

func TestAggregationCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []Record{{TicketID: "t1", CreatedAt: ts(1, 9)}}
	_, err := BuildOverview(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = TimeTrend(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = CategoryDistribution(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = ResponsePerformance(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}
