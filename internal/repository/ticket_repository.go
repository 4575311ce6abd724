package repository

//go:generate mockgen -source=ticket_repository.go -destination=mocks/mock_ticket_repository.go -package=mocks TicketRepository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// ErrNotFound is returned when no ticket matches the requested id.
var ErrNotFound = errors.New("ticket not found")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// List returns every ticket ordered by deadline, latest first.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Create stores the ticket and assigns its ID.
	Create(ctx context.Context, ticket *domain.Ticket) error
	// FindAndUpdate applies patch to the ticket with the given id and returns
	// the updated record, or ErrNotFound.
	FindAndUpdate(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error)
}

// newID returns a fresh object id in its 24 character hex form.
func newID() string {
	return primitive.NewObjectID().Hex()
}
