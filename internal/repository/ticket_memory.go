package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// MemoryTicketRepository keeps tickets in process memory.
type MemoryTicketRepository struct {
	mu    sync.RWMutex
	byID  map[string]domain.Ticket
	order []string
}

// NewMemoryTicketRepository instantiates an empty repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{byID: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	tickets := make([]domain.Ticket, 0, len(r.order))
	for _, id := range r.order {
		tickets = append(tickets, r.byID[id])
	}
	r.mu.RUnlock()

	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].Deadline.After(tickets[j].Deadline)
	})
	return tickets, nil
}

func (r *MemoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ticket.ID = newID()
	r.byID[ticket.ID] = *ticket
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *MemoryTicketRepository) FindAndUpdate(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := patch.Apply(current)
	r.byID[id] = updated
	return &updated, nil
}
