package middleware

import (
	"log"

	"memory-match-system/session"

	"github.com/gofiber/fiber/v2"
)

// SessionMiddleware resolves the X-Session-Token header into request-local
// identity. Routes behind it can read "user_id" and "username" from Locals.
func SessionMiddleware(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(session.HeaderName)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing session token.",
			})
		}

		sess, err := sessions.Resolve(c.Context(), token)
		if err != nil {
			log.Printf("❌ [Session] rejected token on %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired session.",
			})
		}

		c.Locals("user_id", sess.UserID)
		c.Locals("username", sess.Username)

		return c.Next()
	}
}
