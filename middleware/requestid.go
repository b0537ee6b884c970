package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studytrack/logger"
)

const RequestIDHeader = "X-Request-ID"

var nopLogger = logger.NewNop()

// RequestContext tags each request with an id, a request-scoped logger and a deadline
// carried by c.UserContext().
func RequestContext(log *logger.Logger, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Locals("reqid", id)

		reqLog := log.With("requestId", id)
		c.Locals("logger", reqLog)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		start := time.Now()
		err := c.Next()
		reqLog.Debug("request handled",
			"method", c.Method(),
			"path", c.OriginalURL(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start),
		)
		return err
	}
}

// Logger returns the request-scoped logger, or a no-op one outside RequestContext.
func Logger(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals("logger").(*logger.Logger); ok {
		return l
	}
	return nopLogger
}
