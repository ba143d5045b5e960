package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nuvix-market/nuvix-suite/internal/api/dto"
	"github.com/nuvix-market/nuvix-suite/internal/service"
)

// TicketsHandler exposes read-only views of tickets, reviews and the blacklist.
type TicketsHandler struct {
	tickets   *service.TicketService
	reviews   *service.ReviewService
	blacklist *service.BlacklistService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, reviews *service.ReviewService, blacklist *service.BlacklistService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, reviews: reviews, blacklist: blacklist}
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.tickets.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.TicketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = dto.NewTicketResponse(t)
	}
	return c.JSON(fiber.Map{"data": out, "count": len(out)})
}

// Reviews handles GET /api/reviews.
func (h *TicketsHandler) Reviews(c *fiber.Ctx) error {
	reviews, err := h.reviews.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ReviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = dto.NewReviewResponse(r)
	}
	return c.JSON(fiber.Map{"data": out, "count": len(out)})
}

// Blacklist handles GET /api/blacklist.
func (h *TicketsHandler) Blacklist(c *fiber.Ctx) error {
	ids, err := h.blacklist.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return c.JSON(fiber.Map{"data": out, "count": len(out)})
}
