package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
)

// render runs the app error handler for a chain error so the final status is
// known to the caller.
func render(c *fiber.Ctx, chainErr error) {
	if chainErr == nil {
		return
	}
	if err := c.App().ErrorHandler(c, chainErr); err != nil {
		_ = c.SendStatus(fiber.StatusInternalServerError)
	}
}

// RequestLogger logs one line per request with its status and latency.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		render(c, chainErr)

		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error().Err(chainErr)
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP())
		if uid, ok := c.Locals(LocalUserID).(string); ok {
			ev = ev.Str("user_id", uid)
		}
		ev.Msg("request")
		return nil
	}
}

// Metrics records in-flight requests, counts and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		metrics.RequestStarted()

		chainErr := c.Next()
		render(c, chainErr)

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		metrics.RequestFinished(c.Method(), route, c.Response().StatusCode(), time.Since(start))
		return nil
	}
}
