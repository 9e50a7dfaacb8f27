package middleware

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestLogger logs METHOD PATH -> STATUS (duration) for every request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Printf("%s %s -> %d (%s)",
			c.Method(), c.Path(), c.Response().StatusCode(),
			time.Since(start).Truncate(time.Millisecond))
		return err
	}
}
