package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
	Cause  any    `json:"cause,omitempty"`
}

// Resolve maps an error to its response. Unspecified statuses become 500 and
// empty messages fall back to the status reason phrase.
func Resolve(err error) ErrorResponse {
	var (
		status  int
		message string
		cause   any
	)

	var fiberErr *fiber.Error
	if appErr, ok := errorutil.As(err); ok {
		status = appErr.StatusCode()
		message = appErr.Message
		cause = appErr.Cause
	} else if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	} else {
		status = fiber.StatusInternalServerError
		if err != nil {
			message = err.Error()
		}
	}

	if message == "" {
		message = utils.StatusMessage(status)
	}
	return ErrorResponse{Status: status, Error: message, Cause: cause}
}

// ErrorHandler is the terminal responder installed on the fiber app.
func ErrorHandler(c *fiber.Ctx, err error) error {
	resp := Resolve(err)
	return c.Status(resp.Status).JSON(resp)
}
