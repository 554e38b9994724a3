package dto

import "github.com/feedbackhub/feedback-tracker/internal/domain"

// OverviewResponse summarizes the ticket set. Durations are reported in
// whole seconds.
type OverviewResponse struct {
	Total                 int                           `json:"total"`
	StatusDistribution    map[domain.TicketStatus]int   `json:"status_distribution"`
	PriorityDistribution  map[domain.TicketPriority]int `json:"priority_distribution"`
	AverageResponseSecs   int64                         `json:"average_response_seconds"`
	AverageResolutionSecs int64                         `json:"average_resolution_seconds"`
}

// CategoryCountResponse is one category distribution row.
type CategoryCountResponse struct {
	CategoryName string `json:"category_name"`
	Count        int    `json:"count"`
}

// TrendPointResponse is one calendar-day bucket.
type TrendPointResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ResponseStatsResponse summarizes response times for one priority.
type ResponseStatsResponse struct {
	Priority    domain.TicketPriority `json:"priority"`
	AverageSecs int64                 `json:"average_seconds"`
	MinSecs     int64                 `json:"min_seconds"`
	MaxSecs     int64                 `json:"max_seconds"`
	Samples     int                   `json:"samples"`
}
