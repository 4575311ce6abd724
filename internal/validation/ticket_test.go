package validation

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func newValidator() *TicketValidator {
	return NewTicketValidator(func() time.Time { return fixedNow })
}

func requireValidationError(t *testing.T, err error, want string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errorutil.As(err)
	require.True(t, ok, "expected errorutil.Error, got %T", err)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
	assert.Equal(t, want, appErr.Message)
}

func TestValidateCreationAcceptsValidPayload(t *testing.T) {
	v := newValidator()

	ticket, err := v.ValidateCreation([]byte(`{
		"ticket": {
			"client": "Simple Task",
			"issue": "Running go test is awesome!",
			"status": "closed",
			"deadline": "2026-10-20T08:30:00.000Z"
		}
	}`))
	require.NoError(t, err)

	assert.Empty(t, ticket.ID)
	assert.Equal(t, "Simple Task", ticket.Client)
	assert.Equal(t, "Running go test is awesome!", ticket.Issue)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	assert.Equal(t, time.Date(2026, 10, 20, 8, 30, 0, 0, time.UTC), ticket.Deadline)
}

func TestValidateCreationAppliesDefaults(t *testing.T) {
	v := newValidator()

	ticket, err := v.ValidateCreation([]byte(`{"ticket":{"client":"Simple Task","issue":"Running go test is awesome!"}}`))
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, fixedNow, ticket.Deadline)
}

func TestValidateCreationAcceptsBoundaryLengths(t *testing.T) {
	v := newValidator()

	cases := map[string][2]string{
		"minimums":   {strings.Repeat("c", 2), strings.Repeat("i", 10)},
		"maximums":   {strings.Repeat("c", 80), strings.Repeat("i", 450)},
		"code point": {"éé", strings.Repeat("ü", 10)},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			body := `{"ticket":{"client":"` + tc[0] + `","issue":"` + tc[1] + `"}}`
			_, err := v.ValidateCreation([]byte(body))
			assert.NoError(t, err)
		})
	}
}

func TestValidateCreationRejections(t *testing.T) {
	const issue = "Running go test is awesome!"

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "body is not an object",
			body: `["ticket"]`,
			want: `"value" must be of type object`,
		},
		{
			name: "body is not json",
			body: `{"ticket":`,
			want: "request body must be valid JSON",
		},
		{
			name: "empty body",
			body: ``,
			want: `"ticket" is required`,
		},
		{
			name: "ticket key missing",
			body: `{}`,
			want: `"ticket" is required`,
		},
		{
			name: "ticket is null",
			body: `{"ticket":null}`,
			want: `"ticket" must be of type object`,
		},
		{
			name: "ticket is a string",
			body: `{"ticket":"hello"}`,
			want: `"ticket" must be of type object`,
		},
		{
			name: "client missing",
			body: `{"ticket":{"issue":"` + issue + `"}}`,
			want: `"ticket.client" is required`,
		},
		{
			name: "client is not a string",
			body: `{"ticket":{"client":42,"issue":"` + issue + `"}}`,
			want: `"ticket.client" must be a string`,
		},
		{
			name: "client is empty",
			body: `{"ticket":{"client":"","issue":"` + issue + `"}}`,
			want: `"ticket.client" is not allowed to be empty`,
		},
		{
			name: "client too short",
			body: `{"ticket":{"client":"J","issue":"` + issue + `"}}`,
			want: `"ticket.client" length must be at least 2 characters long`,
		},
		{
			name: "client too long",
			body: `{"ticket":{"client":"` + strings.Repeat("c", 81) + `","issue":"` + issue + `"}}`,
			want: `"ticket.client" length must be less than or equal to 80 characters long`,
		},
		{
			name: "issue missing",
			body: `{"ticket":{"client":"Acme"}}`,
			want: `"ticket.issue" is required`,
		},
		{
			name: "issue too short",
			body: `{"ticket":{"client":"Acme","issue":"short"}}`,
			want: `"ticket.issue" length must be at least 10 characters long`,
		},
		{
			name: "issue too long",
			body: `{"ticket":{"client":"Acme","issue":"` + strings.Repeat("i", 451) + `"}}`,
			want: `"ticket.issue" length must be less than or equal to 450 characters long`,
		},
		{
			name: "status not in set",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","status":"pending"}}`,
			want: `"ticket.status" must be one of [open, closed]`,
		},
		{
			name: "status wrong type",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","status":1}}`,
			want: `"ticket.status" must be one of [open, closed]`,
		},
		{
			name: "deadline not a date",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","deadline":"tomorrow"}}`,
			want: `"ticket.deadline" must be a valid date`,
		},
		{
			name: "deadline null",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","deadline":null}}`,
			want: `"ticket.deadline" must be a valid date`,
		},
		{
			name: "deadline too early",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","deadline":"2026-10-17T11:59:59.000Z"}}`,
			want: `"ticket.deadline" must be greater than "2026-10-17T12:00:00.000Z"`,
		},
		{
			name: "deadline equal to lower bound",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","deadline":"2026-10-17T12:00:00.000Z"}}`,
			want: `"ticket.deadline" must be greater than "2026-10-17T12:00:00.000Z"`,
		},
		{
			name: "deadline too late",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","deadline":"2026-10-22T00:00:00Z"}}`,
			want: `"ticket.deadline" must be less than "2026-10-21T12:00:00.000Z"`,
		},
		{
			name: "unknown key inside ticket",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","priority":"high"}}`,
			want: `"ticket.priority" is not allowed`,
		},
		{
			name: "id supplied on create",
			body: `{"ticket":{"id":"507f191e810c19729de81111","client":"Acme","issue":"` + issue + `"}}`,
			want: `"ticket.id" is not allowed`,
		},
		{
			name: "unknown top level key",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `"},"extra":true}`,
			want: `"extra" is not allowed`,
		},
		{
			name: "first violated rule wins",
			body: `{"ticket":{"client":"a","issue":"short"}}`,
			want: `"ticket.client" length must be at least 2 characters long`,
		},
		{
			name: "field rules run before unknown keys",
			body: `{"ticket":{"zzz":1,"client":"Acme","issue":"short"}}`,
			want: `"ticket.issue" length must be at least 10 characters long`,
		},
		{
			name: "unknown keys reported in document order",
			body: `{"ticket":{"client":"Acme","issue":"` + issue + `","b":1,"a":2}}`,
			want: `"ticket.b" is not allowed`,
		},
	}

	v := newValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateCreation([]byte(tc.body))
			requireValidationError(t, err, tc.want)
		})
	}
}

func TestValidateCreationDeadlineFormats(t *testing.T) {
	v := newValidator()
	base := `{"ticket":{"client":"Acme","issue":"Running go test is awesome!","deadline":%s}}`

	cases := map[string]struct {
		deadline string
		want     time.Time
	}{
		"rfc3339 with offset": {`"2026-10-19T14:00:00+02:00"`, time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)},
		"no zone":             {`"2026-10-20T09:15:00"`, time.Date(2026, 10, 20, 9, 15, 0, 0, time.UTC)},
		"date only":           {`"2026-10-20"`, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		"epoch millis":        {"1792497600000", time.UnixMilli(1792497600000).UTC()},
		"sub millisecond":     {`"2026-10-19T12:00:00.123456Z"`, time.Date(2026, 10, 19, 12, 0, 0, 123000000, time.UTC)},
		"space separated":     {`"2026-10-19 13:00:00"`, time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)},
		"epoch millis string": {`"1792411200000"`, time.UnixMilli(1792411200000).UTC()},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ticket, err := v.ValidateCreation([]byte(strings.Replace(base, "%s", tc.deadline, 1)))
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(ticket.Deadline), "got %s", ticket.Deadline)
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newValidator()

	t.Run("accepts a valid id and status", func(t *testing.T) {
		input, err := v.ValidateUpdate("5349b4ddd2781d08c09890f3", []byte(`{"ticket":{"status":"open"}}`))
		require.NoError(t, err)
		assert.Equal(t, "5349b4ddd2781d08c09890f3", input.ID)
		assert.Equal(t, domain.TicketStatusOpen, input.Status)
	})

	t.Run("normalizes upper case ids", func(t *testing.T) {
		input, err := v.ValidateUpdate("5349B4DDD2781D08C09890F3", []byte(`{"ticket":{"status":"closed"}}`))
		require.NoError(t, err)
		assert.Equal(t, "5349b4ddd2781d08c09890f3", input.ID)
		assert.Equal(t, domain.TicketStatusClosed, input.Status)
	})

	t.Run("ignores unknown top level keys", func(t *testing.T) {
		_, err := v.ValidateUpdate("5349b4ddd2781d08c09890f3", []byte(`{"ticket":{"status":"open"},"meta":1}`))
		assert.NoError(t, err)
	})
}

func TestValidateUpdateRejections(t *testing.T) {
	const validID = "5349b4ddd2781d08c09890f4"

	cases := []struct {
		name string
		id   string
		body string
		want string
	}{
		{"id not hex", "invalidId", `{"ticket":{"status":"open"}}`, InvalidIDMessage},
		{"id empty", "", `{"ticket":{"status":"open"}}`, InvalidIDMessage},
		{"id too short", "5349b4ddd2781d08c09890f", `{"ticket":{"status":"open"}}`, InvalidIDMessage},
		{"id too long", "5349b4ddd2781d08c09890f44", `{"ticket":{"status":"open"}}`, InvalidIDMessage},
		{"id 24 chars not hex", "zzzzzzzzzzzzzzzzzzzzzzzz", `{"ticket":{"status":"open"}}`, InvalidIDMessage},
		{"id checked before body", "invalid", `{}`, InvalidIDMessage},
		{"ticket missing", validID, `{}`, `"ticket" is required`},
		{"ticket null", validID, `{"ticket":null}`, `"ticket" must be of type object`},
		{"ticket array", validID, `{"ticket":[]}`, `"ticket" must be of type object`},
		{"status missing", validID, `{"ticket":{}}`, `"ticket.status" is required`},
		{"status invalid", validID, `{"ticket":{"status":"INVALID_STATUS"}}`, `"ticket.status" must be one of [open, closed]`},
		{"unknown key in ticket", validID, `{"ticket":{"status":"open","client":"Acme"}}`, `"ticket.client" is not allowed`},
	}

	v := newValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.ValidateUpdate(tc.id, []byte(tc.body))
			requireValidationError(t, err, tc.want)
		})
	}
}

func TestValidateCreationDeadlineOutOfRange(t *testing.T) {
	v := newValidator()

	for _, deadline := range []string{"1e300", "-1e300", `"99999999999999999999"`} {
		t.Run(deadline, func(t *testing.T) {
			_, err := v.ValidateCreation([]byte(`{"ticket":{"client":"Acme","issue":"Running go test is awesome!","deadline":` + deadline + `}}`))
			requireValidationError(t, err, `"ticket.deadline" must be a valid date`)
		})
	}
}
