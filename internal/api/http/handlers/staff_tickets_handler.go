package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/feedbackhub/feedback-tracker/internal/api/dto"
	"github.com/feedbackhub/feedback-tracker/internal/auth"
	"github.com/feedbackhub/feedback-tracker/internal/service"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// StaffTicketsHandler exposes triage endpoints available to staff only.
type StaffTicketsHandler struct {
	service *service.TicketService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(ticketService *service.TicketService) *StaffTicketsHandler {
	return &StaffTicketsHandler{service: ticketService}
}

// Assign POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeID == "" {
		return apperrors.NewFieldValidationError("assignee_id", "assignee_id required")
	}

	ticket, err := h.service.Assign(c.UserContext(), principal.Actor(), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Delete DELETE /staff/tickets/:id. Admin only.
func (h *StaffTicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Delete(c.UserContext(), principal.Actor(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
