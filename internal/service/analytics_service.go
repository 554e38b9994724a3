package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/feedbackhub/feedback-tracker/internal/analytics"
	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// AnalyticsService answers read-only aggregate queries over committed
// tickets. Client callers are always scoped to their own submissions.
type AnalyticsService struct {
	records  repository.AnalyticsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewAnalyticsService constructs the service. cache may be nil, in which
// case every query hits the database.
func NewAnalyticsService(records repository.AnalyticsRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{records: records, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Overview returns totals, distributions and average durations. Unfiltered
// staff overviews are served from a short-lived cache.
func (s *AnalyticsService) Overview(ctx context.Context, actor domain.Actor, filter repository.AnalyticsFilter) (*analytics.Overview, error) {
	filter = s.scope(actor, filter)

	cacheable := s.cache != nil && filterIsEmpty(filter)
	cacheKey := "analytics:overview"
	if cacheable {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var overview analytics.Overview
			if json.Unmarshal([]byte(cached), &overview) == nil {
				return &overview, nil
			}
		}
	}

	records, err := s.fetch(ctx, filter)
	if err != nil {
		return nil, err
	}
	overview, err := analytics.BuildOverview(ctx, records)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if cacheable {
		if payload, err := json.Marshal(overview); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("analytics cache write failed", zap.Error(err))
			}
		}
	}
	return overview, nil
}

// CategoryDistribution returns ticket counts per category, largest first.
func (s *AnalyticsService) CategoryDistribution(ctx context.Context, actor domain.Actor, filter repository.AnalyticsFilter) ([]analytics.CategoryCount, error) {
	records, err := s.fetch(ctx, s.scope(actor, filter))
	if err != nil {
		return nil, err
	}
	counts, err := analytics.CategoryDistribution(ctx, records)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return counts, nil
}

// TimeTrend returns per-day creation counts in ascending date order.
func (s *AnalyticsService) TimeTrend(ctx context.Context, actor domain.Actor, filter repository.AnalyticsFilter) ([]analytics.TrendPoint, error) {
	records, err := s.fetch(ctx, s.scope(actor, filter))
	if err != nil {
		return nil, err
	}
	points, err := analytics.TimeTrend(ctx, records)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return points, nil
}

// ResponsePerformance returns response time statistics per priority.
func (s *AnalyticsService) ResponsePerformance(ctx context.Context, actor domain.Actor, filter repository.AnalyticsFilter) (map[domain.TicketPriority]analytics.ResponseStats, error) {
	records, err := s.fetch(ctx, s.scope(actor, filter))
	if err != nil {
		return nil, err
	}
	stats, err := analytics.ResponsePerformance(ctx, records)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

// InvalidateOverview drops the cached overview after a mutation.
func (s *AnalyticsService) InvalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "analytics:overview").Err(); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.Error(err))
	}
}

func (s *AnalyticsService) scope(actor domain.Actor, filter repository.AnalyticsFilter) repository.AnalyticsFilter {
	if !actor.Role.IsStaff() {
		submitter := actor.ID
		filter.SubmittedBy = &submitter
	}
	return filter
}

func (s *AnalyticsService) fetch(ctx context.Context, filter repository.AnalyticsFilter) ([]analytics.Record, error) {
	records, err := s.records.FetchRecords(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return records, nil
}

func filterIsEmpty(filter repository.AnalyticsFilter) bool {
	return filter.SubmittedBy == nil &&
		len(filter.Statuses) == 0 &&
		len(filter.Priorities) == 0 &&
		len(filter.CategoryIDs) == 0 &&
		filter.CreatedFrom == nil &&
		filter.CreatedTo == nil
}
