package observability

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// UnmatchedRoute labels requests that no registered route handled.
const UnmatchedRoute = "unmatched"

const unmatchedRouteKey = "observability.unmatched_route"

// MarkUnmatched flags the request as having fallen through the router.
func MarkUnmatched(c *fiber.Ctx) {
	c.Locals(unmatchedRouteKey, true)
}

// RouteLabel returns the registered route template for use as a metric label.
// The raw request path is never used: it is unbounded and fiber hands it out
// as a view over a buffer that is reused by the next request.
func RouteLabel(c *fiber.Ctx) string {
	if unmatched, _ := c.Locals(unmatchedRouteKey).(bool); unmatched {
		return UnmatchedRoute
	}
	r := c.Route()
	if r == nil || r.Path == "" {
		return UnmatchedRoute
	}
	return utils.CopyString(r.Path)
}

// RequestLogger logs one line per request and feeds request metrics.
func RequestLogger(logger *zap.Logger, metrics *Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := c.Response().StatusCode()
		metrics.RecordRequest(RouteLabel(c), c.Method(), status, elapsed)

		logger.Info("request",
			zap.String("method", c.Method()),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
		return err
	}
}
