package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-api/internal/domain"
)

// PostgresTicketRepository stores tickets in the tickets table.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository instantiates repository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

func (r *PostgresTicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT id, client, issue, status, deadline
        FROM tickets
        ORDER BY deadline DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, client, issue, status, deadline)
        VALUES ($1,$2,$3,$4,$5)`
	id := newID()
	if _, err := r.pool.Exec(ctx, query,
		id,
		ticket.Client,
		ticket.Issue,
		ticket.Status,
		ticket.Deadline,
	); err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

func (r *PostgresTicketRepository) FindAndUpdate(ctx context.Context, id string, patch domain.TicketPatch) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=COALESCE($2, status)
        WHERE id=$1
        RETURNING id, client, issue, status, deadline`
	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query, id, status).Scan(
		&ticket.ID,
		&ticket.Client,
		&ticket.Issue,
		&ticket.Status,
		&ticket.Deadline,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ticket.Deadline = ticket.Deadline.UTC()
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := make([]domain.Ticket, 0)
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Client,
			&ticket.Issue,
			&ticket.Status,
			&ticket.Deadline,
		); err != nil {
			return nil, err
		}
		ticket.Deadline = ticket.Deadline.UTC()
		result = append(result, ticket)
	}
	return result, rows.Err()
}
