package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/feedbackhub/feedback-tracker/internal/auth"
	"github.com/feedbackhub/feedback-tracker/internal/repository"
	"github.com/feedbackhub/feedback-tracker/internal/service"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// ExportsHandler exposes staff-only ticket exports.
type ExportsHandler struct {
	service *service.ExportService
}

// NewExportsHandler constructs handler.
func NewExportsHandler(exportService *service.ExportService) *ExportsHandler {
	return &ExportsHandler{service: exportService}
}

// Export POST /staff/exports. Runs an export over the query filter and
// streams the rendered document.
func (h *ExportsHandler) Export(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	listFilter, _, _ := parseTicketQuery(c)
	result, err := h.service.Export(c.UserContext(), principal.Actor(), repository.TicketFilter{
		Statuses:    listFilter.Statuses,
		Priorities:  listFilter.Priorities,
		CategoryIDs: listFilter.CategoryIDs,
		SearchTerm:  listFilter.SearchTerm,
		CreatedFrom: listFilter.CreatedFrom,
		CreatedTo:   listFilter.CreatedTo,
	})
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.FileName+`"`)
	return c.Send(result.Content)
}

// History GET /staff/exports. Lists the caller's recent export runs.
func (h *ExportsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	logs, err := h.service.History(c.UserContext(), principal.Actor(), parseInt(c.Query("limit"), 20))
	if err != nil {
		return err
	}
	items := make([]fiber.Map, 0, len(logs))
	for _, log := range logs {
		items = append(items, fiber.Map{
			"id":           log.ID,
			"format":       log.Format,
			"status":       log.Status,
			"file_name":    log.FileName,
			"size_bytes":   log.SizeBytes,
			"ticket_count": log.TicketCount,
			"error":        log.Error,
			"created_at":   log.CreatedAt,
			"completed_at": log.CompletedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
