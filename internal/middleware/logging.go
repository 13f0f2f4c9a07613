// Package middleware holds fiber middleware shared by every route.
package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Logging logs one line per request with method, path, status and latency.
// A nil logger falls back to zap.L().
func Logging(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l := log
		if l == nil {
			l = zap.L()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			l.Error("request", append(fields, zap.Error(err))...)
		case status >= fiber.StatusBadRequest:
			l.Warn("request", append(fields, zap.Error(err))...)
		default:
			l.Info("request", fields...)
		}
		return err
	}
}
