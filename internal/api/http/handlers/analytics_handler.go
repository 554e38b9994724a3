package handlers

import (
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feedbackhub/feedback-tracker/internal/api/dto"
	"github.com/feedbackhub/feedback-tracker/internal/auth"
	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	"github.com/feedbackhub/feedback-tracker/internal/service"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// AnalyticsHandler exposes aggregate query endpoints.
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: analyticsService}
}

// Overview GET /analytics/overview.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	overview, err := h.service.Overview(c.UserContext(), principal.Actor(), parseAnalyticsQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OverviewResponse{
		Total:                 overview.Total,
		StatusDistribution:    overview.StatusDistribution,
		PriorityDistribution:  overview.PriorityDistribution,
		AverageResponseSecs:   int64(overview.AverageResponseTime / time.Second),
		AverageResolutionSecs: int64(overview.AverageResolutionTime / time.Second),
	}})
}

// Categories GET /analytics/categories.
func (h *AnalyticsHandler) Categories(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	counts, err := h.service.CategoryDistribution(c.UserContext(), principal.Actor(), parseAnalyticsQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.CategoryCountResponse, 0, len(counts))
	for _, count := range counts {
		items = append(items, dto.CategoryCountResponse{CategoryName: count.CategoryName, Count: count.Count})
	}
	return c.JSON(fiber.Map{"data": items})
}

// Trend GET /analytics/trend.
func (h *AnalyticsHandler) Trend(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	points, err := h.service.TimeTrend(c.UserContext(), principal.Actor(), parseAnalyticsQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TrendPointResponse, 0, len(points))
	for _, point := range points {
		items = append(items, dto.TrendPointResponse{Date: point.Date, Count: point.Count})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ResponsePerformance GET /analytics/response-performance.
func (h *AnalyticsHandler) ResponsePerformance(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	stats, err := h.service.ResponsePerformance(c.UserContext(), principal.Actor(), parseAnalyticsQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ResponseStatsResponse, 0, len(stats))
	for priority, s := range stats {
		items = append(items, dto.ResponseStatsResponse{
			Priority:    priority,
			AverageSecs: int64(s.Average / time.Second),
			MinSecs:     int64(s.Min / time.Second),
			MaxSecs:     int64(s.Max / time.Second),
			Samples:     s.Samples,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Priority < items[j].Priority })
	return c.JSON(fiber.Map{"data": items})
}

func parseAnalyticsQuery(c *fiber.Ctx) repository.AnalyticsFilter {
	filter := repository.AnalyticsFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if categoryStr := c.Query("category"); categoryStr != "" {
		for _, part := range strings.Split(categoryStr, ",") {
			filter.CategoryIDs = append(filter.CategoryIDs, strings.TrimSpace(part))
		}
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	return filter
}
