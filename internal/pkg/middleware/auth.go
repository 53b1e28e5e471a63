package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/ManuelReschke/StoreFox/internal/pkg/env"
)

// AdminUsersFromEnv returns the ADMIN_USER/ADMIN_PASSWORD pair. Without a
// password no credentials are accepted.
func AdminUsersFromEnv() map[string]string {
	user := strings.TrimSpace(env.GetEnv("ADMIN_USER", "admin"))
	password := env.GetEnv("ADMIN_PASSWORD", "")
	if user == "" || password == "" {
		return map[string]string{}
	}
	return map[string]string{user: password}
}

// RequireAdmin protects admin API routes with HTTP basic auth and answers
// JSON 401 instead of an empty body.
func RequireAdmin(users map[string]string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: users,
		Realm: "StoreFox Admin",
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="StoreFox Admin"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "admin credentials required",
			})
		},
	})
}
