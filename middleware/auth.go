package middleware

import (
	"log"
	"time"

	"tournament-social-system/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SessionCookie is the cookie carrying the opaque session id.
const SessionCookie = "session_id"

// SessionMiddleware resolves the session cookie against the sessions table and
// attaches the user id to the request context. Anonymous requests pass through
// with no user id set; RequireUser is the gate for protected routes.
func SessionMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(SessionCookie)
		if sid == "" {
			return c.Next()
		}

		var session models.Session
		if err := db.First(&session, "id = ?", sid).Error; err != nil {
			if err != gorm.ErrRecordNotFound {
				log.Printf("[SESSION] lookup failed for %s: %v", c.Path(), err)
			}
			return c.Next()
		}
		if session.ExpiresAt.Before(time.Now()) {
			// Expired rows are swept in the background; ignore stale cookies.
			return c.Next()
		}

		c.Locals("user_id", session.UserID)
		return c.Next()
	}
}

// RequireUser rejects requests that carry no resolved session.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not authenticated",
			})
		}
		return c.Next()
	}
}

// UserID returns the authenticated user id for this request, or "".
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
