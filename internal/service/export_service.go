package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/policy"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// Renderer turns a ticket slice into one export document.
type Renderer interface {
	Format() string
	FileName(now time.Time) string
	Render(tickets []domain.Ticket) ([]byte, error)
}

// ExportResult carries the rendered document plus its provenance entry.
type ExportResult struct {
	FileName string
	Content  []byte
	Log      *domain.ExportLog
}

// ExportService renders filtered ticket sets for staff and records a
// provenance log for every run, successful or not.
type ExportService struct {
	tickets  repository.TicketRepository
	logs     repository.ExportLogRepository
	renderer Renderer
	logger   *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(tickets repository.TicketRepository, logs repository.ExportLogRepository, renderer Renderer, logger *zap.Logger) *ExportService {
	return &ExportService{tickets: tickets, logs: logs, renderer: renderer, logger: logger}
}

// Export renders all tickets matching the filter. Staff-only.
func (s *ExportService) Export(ctx context.Context, actor domain.Actor, filter repository.TicketFilter) (*ExportResult, error) {
	if !policy.CanExport(actor.Role) {
		return nil, apperrors.NewForbidden("exports are staff-only")
	}

	// Exports are unpaginated reads of the filtered set.
	filter.Limit = 0
	filter.Offset = 0

	log := &domain.ExportLog{
		RequestedBy: actor.ID,
		Format:      s.renderer.Format(),
		Status:      domain.ExportStatusPending,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, apperrors.MapError(err)
	}

	tickets, _, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, s.fail(ctx, log, err)
	}
	content, err := s.renderer.Render(tickets)
	if err != nil {
		return nil, s.fail(ctx, log, err)
	}

	fileName := s.renderer.FileName(time.Now())
	if err := s.logs.MarkCompleted(ctx, log.ID, fileName, int64(len(content)), len(tickets)); err != nil {
		return nil, apperrors.MapError(err)
	}
	log.Status = domain.ExportStatusCompleted
	log.FileName = fileName
	log.SizeBytes = int64(len(content))
	log.TicketCount = len(tickets)

	s.logger.Info("export completed",
		zap.String("export_id", log.ID),
		zap.String("requested_by", actor.ID),
		zap.Int("ticket_count", len(tickets)))

	return &ExportResult{FileName: fileName, Content: content, Log: log}, nil
}

// History returns recent export runs for the calling staff member.
func (s *ExportService) History(ctx context.Context, actor domain.Actor, limit int) ([]domain.ExportLog, error) {
	if !policy.CanExport(actor.Role) {
		return nil, apperrors.NewForbidden("exports are staff-only")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	logs, err := s.logs.ListByRequester(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return logs, nil
}

func (s *ExportService) fail(ctx context.Context, log *domain.ExportLog, cause error) error {
	if err := s.logs.MarkFailed(ctx, log.ID, cause.Error()); err != nil {
		s.logger.Warn("export failure not recorded", zap.String("export_id", log.ID), zap.Error(err))
	}
	return apperrors.MapError(cause)
}
