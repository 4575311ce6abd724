package repository_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/internal/repository"
)

// ticketRepositoryContract holds the behavior every TicketRepository shares.
// Embedding suites set reset to return an empty repository.
type ticketRepositoryContract struct {
	suite.Suite
	reset func() repository.TicketRepository
	repo  repository.TicketRepository
}

func (s *ticketRepositoryContract) SetupTest() {
	s.repo = s.reset()
}

var baseDeadline = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newTicket(client string, deadline time.Time) *domain.Ticket {
	return &domain.Ticket{
		Client:   client,
		Issue:    "Ticket issued by the repository suite",
		Status:   domain.TicketStatusOpen,
		Deadline: deadline,
	}
}

func (s *ticketRepositoryContract) TestCreateAssignsObjectID() {
	ctx := context.Background()
	ticket := newTicket("Acme", baseDeadline)

	s.Require().NoError(s.repo.Create(ctx, ticket))
	s.Len(ticket.ID, 24)

	tickets, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(tickets, 1)
	s.Equal(*ticket, tickets[0])
}

func (s *ticketRepositoryContract) TestListEmpty() {
	tickets, err := s.repo.List(context.Background())
	s.Require().NoError(err)
	s.NotNil(tickets)
	s.Empty(tickets)
}

func (s *ticketRepositoryContract) TestListOrdersByDeadlineDescending() {
	ctx := context.Background()
	for i, days := range []int{-1, -3, -2} {
		client := []string{"first", "third", "second"}[i]
		s.Require().NoError(s.repo.Create(ctx, newTicket(client, baseDeadline.AddDate(0, 0, days))))
	}

	tickets, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(tickets, 3)
	s.Equal("first", tickets[0].Client)
	s.Equal("second", tickets[1].Client)
	s.Equal("third", tickets[2].Client)
}

func (s *ticketRepositoryContract) TestFindAndUpdateChangesOnlyStatus() {
	ctx := context.Background()
	ticket := newTicket("Acme", baseDeadline.Add(90*time.Minute))
	s.Require().NoError(s.repo.Create(ctx, ticket))

	closed := domain.TicketStatusClosed
	updated, err := s.repo.FindAndUpdate(ctx, ticket.ID, domain.TicketPatch{Status: &closed})
	s.Require().NoError(err)

	want := *ticket
	want.Status = closed
	s.Equal(want, *updated)

	tickets, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Equal([]domain.Ticket{want}, tickets)
}

func (s *ticketRepositoryContract) TestFindAndUpdateEmptyPatchReturnsCurrent() {
	ctx := context.Background()
	ticket := newTicket("Acme", baseDeadline)
	s.Require().NoError(s.repo.Create(ctx, ticket))

	got, err := s.repo.FindAndUpdate(ctx, ticket.ID, domain.TicketPatch{})
	s.Require().NoError(err)
	s.Equal(*ticket, *got)
}

func (s *ticketRepositoryContract) TestFindAndUpdateUnknownID() {
	closed := domain.TicketStatusClosed
	_, err := s.repo.FindAndUpdate(context.Background(), "507f191e810c19729de860ea", domain.TicketPatch{Status: &closed})
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *ticketRepositoryContract) TestConcurrentCreates() {
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.NoError(s.repo.Create(ctx, newTicket("Acme", baseDeadline.Add(time.Duration(i)*time.Minute))))
		}(i)
	}
	wg.Wait()

	tickets, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Len(tickets, 20)

	ids := make(map[string]struct{}, len(tickets))
	for _, ticket := range tickets {
		ids[ticket.ID] = struct{}{}
	}
	s.Len(ids, 20)
}

func newPatch() domain.TicketPatch {
	closed := domain.TicketStatusClosed
	return domain.TicketPatch{Status: &closed}
}
