package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-api/internal/api/dto"
	"github.com/spec-kit/ticket-api/internal/service"
	"github.com/spec-kit/ticket-api/internal/validation"
)

// TicketsHandler serves the ticket collection endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	validator *validation.TicketValidator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, validator *validation.TicketValidator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validator: validator}
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.ListTickets(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketListResponse(tickets))
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	ticket, err := h.validator.ValidateCreation(c.Body())
	if err != nil {
		return err
	}
	created, err := h.service.CreateTicket(c.UserContext(), ticket)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTicketResponse(*created))
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	input, err := h.validator.ValidateUpdate(c.Params("id"), c.Body())
	if err != nil {
		return err
	}
	updated, err := h.service.UpdateStatus(c.UserContext(), input.ID, input.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*updated))
}
