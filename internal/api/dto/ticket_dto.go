package dto

import (
	"time"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// DeadlineLayout renders deadlines as UTC with millisecond precision.
const DeadlineLayout = "2006-01-02T15:04:05.000Z07:00"

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID       string              `json:"id"`
	Client   string              `json:"client"`
	Issue    string              `json:"issue"`
	Status   domain.TicketStatus `json:"status"`
	Deadline string              `json:"deadline"`
}

// TicketListResponse wraps the list payload.
type TicketListResponse struct {
	Tickets []TicketResponse `json:"tickets"`
}

// NewTicketResponse converts a domain ticket.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:       t.ID,
		Client:   t.Client,
		Issue:    t.Issue,
		Status:   t.Status,
		Deadline: FormatDeadline(t.Deadline),
	}
}

// NewTicketListResponse converts a list; the result is never null on the wire.
func NewTicketListResponse(tickets []domain.Ticket) TicketListResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return TicketListResponse{Tickets: out}
}

func FormatDeadline(t time.Time) string {
	return t.UTC().Format(DeadlineLayout)
}
