package validation

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// InvalidIDMessage is returned for identifiers that are not 24 hex characters.
const InvalidIDMessage = `The given "id", must be a valid (MongoDB) ObjectId`

// UpdateInput is a validated status change for a single ticket.
type UpdateInput struct {
	ID     string
	Status domain.TicketStatus
}

// TicketValidator gates ticket payloads before they reach persistence.
type TicketValidator struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewTicketValidator builds a validator. A nil clock uses time.Now.
func NewTicketValidator(now func() time.Time) *TicketValidator {
	if now == nil {
		now = time.Now
	}
	return &TicketValidator{validate: validator.New(), now: now}
}

// ValidateCreation checks a `{ticket: {...}}` body and returns the ticket with
// defaults applied for status and deadline.
func (v *TicketValidator) ValidateCreation(body []byte) (domain.Ticket, error) {
	now := v.now().UTC().Truncate(time.Millisecond)
	ticket := domain.Ticket{}

	ticketSchema := schema{fields: []field{
		{
			key:      "client",
			required: true,
			rules: []rule{
				isString,
				notEmpty,
				minLength(v.validate, domain.ClientMinLength),
				maxLength(v.validate, domain.ClientMaxLength),
			},
			assign: func(val *value) { ticket.Client = val.str },
		},
		{
			key:      "issue",
			required: true,
			rules: []rule{
				isString,
				notEmpty,
				minLength(v.validate, domain.IssueMinLength),
				maxLength(v.validate, domain.IssueMaxLength),
			},
			assign: func(val *value) { ticket.Issue = val.str },
		},
		{
			key:      "status",
			rules:    []rule{oneOf(v.validate, statusNames()...)},
			assign:   func(val *value) { ticket.Status = domain.TicketStatus(val.str) },
			fallback: func() { ticket.Status = domain.TicketStatusOpen },
		},
		{
			key: "deadline",
			rules: []rule{
				isDate,
				greater(now.Add(-domain.DeadlineWindow)),
				less(now.Add(domain.DeadlineWindow)),
			},
			assign:   func(val *value) { ticket.Deadline = val.date.Truncate(time.Millisecond) },
			fallback: func() { ticket.Deadline = now },
		},
	}}

	root := schema{fields: []field{
		{key: "ticket", required: true, rules: []rule{isObject}, nested: ticketSchema},
	}}

	if err := validateBody(root, body); err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// ValidateUpdate checks the route identifier first and then a
// `{ticket: {status}}` body.
func (v *TicketValidator) ValidateUpdate(id string, body []byte) (UpdateInput, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return UpdateInput{}, errorutil.NewValidationError(InvalidIDMessage)
	}

	input := UpdateInput{ID: oid.Hex()}
	ticketSchema := schema{fields: []field{
		{
			key:      "status",
			required: true,
			rules:    []rule{oneOf(v.validate, statusNames()...)},
			assign:   func(val *value) { input.Status = domain.TicketStatus(val.str) },
		},
	}}

	root := schema{
		fields: []field{
			{key: "ticket", required: true, rules: []rule{isObject}, nested: ticketSchema},
		},
		allowUnknown: true,
	}

	if err := validateBody(root, body); err != nil {
		return UpdateInput{}, err
	}
	return input, nil
}

// validateBody treats an empty body as an empty object.
func validateBody(root schema, body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return errorutil.NewValidationError("request body must be valid JSON")
	}
	obj, err := parseObject(body)
	if err != nil {
		return violation("value", "must be of type object")
	}
	return root.validate("", obj)
}

func statusNames() []string {
	names := make([]string, 0, len(domain.TicketStatuses))
	for _, s := range domain.TicketStatuses {
		names = append(names, string(s))
	}
	return names
}
