package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "open"
	TicketStatusClosed TicketStatus = "closed"
)

// TicketStatuses lists the accepted statuses in their canonical order.
var TicketStatuses = []TicketStatus{TicketStatusOpen, TicketStatusClosed}

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// Field bounds for ticket text attributes, counted in code points.
const (
	ClientMinLength = 2
	ClientMaxLength = 80
	IssueMinLength  = 10
	IssueMaxLength  = 450
)

// DeadlineWindow bounds a supplied deadline on both sides of the current time.
const DeadlineWindow = 2 * 24 * time.Hour

// Ticket is a support request raised by a client.
type Ticket struct {
	ID       string
	Client   string
	Issue    string
	Status   TicketStatus
	Deadline time.Time
}

// TicketPatch is a partial update; nil fields are left untouched.
type TicketPatch struct {
	Status *TicketStatus
}

// Apply returns a copy of t with the patch applied.
func (p TicketPatch) Apply(t Ticket) Ticket {
	if p.Status != nil {
		t.Status = *p.Status
	}
	return t
}
