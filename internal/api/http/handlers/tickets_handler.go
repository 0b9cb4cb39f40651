package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// TicketsHandler exposes the ticket workflow endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketData(h.tickets, ticket)})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	filter := service.TicketListFilter{
		Statuses:     parseStatuses(c.Query("status")),
		Priorities:   parsePriorities(c.Query("priority")),
		AssignedToMe: c.Query("assigned") == "me",
		Limit:        c.QueryInt("limit", 50),
		Offset:       c.QueryInt("offset", 0),
	}
	if term := strings.TrimSpace(c.Query("q")); term != "" {
		filter.SearchTerm = &term
	}

	views, err := h.tickets.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}

	out := make([]dto.TicketResponse, 0, len(views))
	for _, view := range views {
		out = append(out, dto.FromTicketView(view))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	view, messages, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}

	detail := dto.TicketDetailResponse{
		TicketResponse: dto.FromTicketView(*view),
		Messages:       make([]dto.TicketMessageResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		detail.Messages = append(detail.Messages, dto.FromTicketMessage(msg))
	}
	return c.JSON(fiber.Map{"data": detail})
}

// UpdateStatus handles PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketData(h.tickets, ticket)})
}

// Assign handles PATCH /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.AssignTicket(c.UserContext(), actor, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketData(h.tickets, ticket)})
}

// Close handles POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.CloseTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CloseTicket(c.UserContext(), actor, c.Params("id"), req.Rating, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketData(h.tickets, ticket)})
}

// Reopen handles POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	ticket, err := h.tickets.ReopenTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketData(h.tickets, ticket)})
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	if err := h.tickets.DeleteTicket(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddMessage handles POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.tickets.AddMessage(c.UserContext(), actor, c.Params("id"), req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.FromTicketMessage(*msg)})
}

func ticketData(svc *service.TicketService, ticket *domain.Ticket) dto.TicketResponse {
	return dto.FromTicketView(svc.View(ticket))
}

func mustPrincipal(c *fiber.Ctx) *domain.User {
	principal, _ := auth.PrincipalFromContext(c)
	return principal.User
}

func parseStatuses(raw string) []domain.TicketStatus {
	var out []domain.TicketStatus
	for _, part := range splitCSV(raw) {
		out = append(out, domain.TicketStatus(part))
	}
	return out
}

func parsePriorities(raw string) []domain.TicketPriority {
	var out []domain.TicketPriority
	for _, part := range splitCSV(raw) {
		out = append(out, domain.TicketPriority(part))
	}
	return out
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
