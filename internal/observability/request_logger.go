package observability

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-api/internal/auth"
	"github.com/spec-kit/ticket-api/pkg/util/errorutil"
)

// RequestIDLocal is the fiber locals key holding the request id.
const RequestIDLocal = "request_id"

// RequestLogger logs every request and records metrics. Errors are returned
// unchanged so the application error handler still formats them.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			status = statusOf(err)
		}
		route := c.Route().Path
		method := c.Method()

		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", c.Path()),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", elapsed),
		}
		if rid, ok := c.Locals(RequestIDLocal).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if subject, ok := auth.SubjectFromContext(c); ok {
			fields = append(fields, zap.String("subject", subject))
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("request failed", append(fields, zap.Error(err))...)
		case status >= fiber.StatusBadRequest:
			if err != nil {
				fields = append(fields, zap.String("reason", err.Error()))
			}
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request completed", fields...)
		}

		metrics.RecordRequest(route, method, status, elapsed)
		if status >= fiber.StatusBadRequest {
			metrics.RecordError(route, method, status)
		}
		return err
	}
}

func statusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return errorutil.StatusOf(err)
}
