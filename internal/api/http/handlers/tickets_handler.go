package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/feedbackhub/feedback-tracker/internal/api/dto"
	"github.com/feedbackhub/feedback-tracker/internal/auth"
	"github.com/feedbackhub/feedback-tracker/internal/domain"
	"github.com/feedbackhub/feedback-tracker/internal/service"
	"github.com/feedbackhub/feedback-tracker/internal/tracker"
	apperrors "github.com/feedbackhub/feedback-tracker/pkg/util"
)

// TicketsHandler exposes ticket endpoints. Role-based rules live in the
// service layer; the handler only translates HTTP in and out.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), principal.Actor(), tracker.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		Status:      req.Status,
		Tags:        req.Tags,
		Attachments: attachmentInputs(req.Attachments),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter, page, pageSize := parseTicketQuery(c)

	tickets, total, err := h.service.List(c.UserContext(), principal.Actor(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, comments, err := h.service.Get(c.UserContext(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// Update PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	changes := tracker.ChangeSet{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		Status:      req.Status,
		Tags:        req.Tags,
	}
	if req.Attachments != nil {
		attachments := attachmentInputs(*req.Attachments)
		changes.Attachments = &attachments
	}

	ticket, err := h.service.Update(c.UserContext(), principal.Actor(), c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ChangeStatus POST /tickets/:id/status.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.ChangeStatus(c.UserContext(), principal.Actor(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.service.AddComment(c.UserContext(), principal.Actor(), c.Params("id"), req.Body, attachmentInputs(req.Attachments))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entries, err := h.service.History(c.UserContext(), principal.Actor(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryEntryResponse{
			ID:          entry.ID,
			Action:      entry.Action,
			Field:       entry.Field,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			PerformedBy: entry.PerformedBy,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, int, int) {
	filter := service.TicketListFilter{}
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
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	filter.CreatedFrom = parseTime(c.Query("created_from"))
	filter.CreatedTo = parseTime(c.Query("created_to"))
	filter.Page = parseInt(c.Query("page"), 1)
	filter.PageSize = parseInt(c.Query("page_size"), 20)
	return filter, filter.Page, filter.PageSize
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func attachmentInputs(reqs []dto.AttachmentRequest) []domain.Attachment {
	if len(reqs) == 0 {
		return nil
	}
	attachments := make([]domain.Attachment, 0, len(reqs))
	for _, req := range reqs {
		attachments = append(attachments, domain.Attachment{
			StorageKey: req.StorageKey,
			FileName:   req.FileName,
			MimeType:   req.MimeType,
			SizeBytes:  req.SizeBytes,
		})
	}
	return attachments
}

func attachmentResponses(attachments []domain.Attachment) []dto.AttachmentResponse {
	result := make([]dto.AttachmentResponse, 0, len(attachments))
	for _, att := range attachments {
		result = append(result, dto.AttachmentResponse{
			ID:        att.ID,
			FileName:  att.FileName,
			MimeType:  att.MimeType,
			SizeBytes: att.SizeBytes,
		})
	}
	return result
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         ticket.ID,
		Title:      ticket.Title,
		CategoryID: ticket.CategoryID,
		Status:     ticket.Status,
		Priority:   ticket.Priority,
		AssignedTo: ticket.AssignedTo,
		Tags:       ticket.Tags,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment) dto.TicketDetailResponse {
	commentItems := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		commentItems = append(commentItems, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		CategoryID:  ticket.CategoryID,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		SubmittedBy: ticket.SubmittedBy,
		AssignedTo:  ticket.AssignedTo,
		Tags:        ticket.Tags,
		Attachments: attachmentResponses(ticket.Attachments),
		Comments:    commentItems,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		ResolvedAt:  ticket.ResolvedAt,
		ClosedAt:    ticket.ClosedAt,
		ReopenedAt:  ticket.ReopenedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          comment.ID,
		AuthorID:    comment.AuthorID,
		Body:        comment.Body,
		Attachments: attachmentResponses(comment.Attachments),
		CreatedAt:   comment.CreatedAt,
	}
}
