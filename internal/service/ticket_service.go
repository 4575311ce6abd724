package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/internal/events"
	"github.com/spec-kit/ticket-api/internal/observability"
	"github.com/spec-kit/ticket-api/internal/repository"
	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// TicketNotFoundMessage is the error text for updates of unknown tickets.
const TicketNotFoundMessage = "Ticket not found"

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// ListTickets returns every ticket, latest deadline first.
func (s *TicketService) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// CreateTicket persists an already validated ticket.
func (s *TicketService) CreateTicket(ctx context.Context, ticket domain.Ticket) (*domain.Ticket, error) {
	if !ticket.Status.Valid() {
		return nil, invalidStatus(ticket.Status)
	}
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return nil, err
	}
	s.metrics.TicketCreated()

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			Client:   ticket.Client,
			Status:   ticket.Status,
			Deadline: ticket.Deadline,
		},
	})
	return &ticket, nil
}

// UpdateStatus sets the status of the ticket with the given id.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, invalidStatus(status)
	}
	ticket, err := s.tickets.FindAndUpdate(ctx, id, domain.TicketPatch{Status: &status})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errorutil.NewNotFound(TicketNotFoundMessage)
	}
	if err != nil {
		return nil, err
	}
	s.metrics.TicketStatusChanged(ticket.Status)

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Payload:  events.TicketStatusChangedPayload{NewStatus: ticket.Status},
	})
	return ticket, nil
}

func invalidStatus(status domain.TicketStatus) error {
	return errorutil.NewValidationError(fmt.Sprintf("unknown ticket status %q", status))
}

// publishEvent never fails the request; the write has already happened.
func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
