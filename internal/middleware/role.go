package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
)

// RequireRoles lets the request through only for the listed roles. It must
// run after Protect.
func RequireRoles(allowed ...string) fiber.Handler {
	allowedSet := map[string]bool{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = true
	}

	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return apperr.Unauthorized("Não autorizado")
		}

		role := strings.ToLower(strings.TrimSpace(string(u.Role)))
		if !allowedSet[role] {
			return apperr.Forbidden("Você não tem permissão para acessar este recurso")
		}

		return c.Next()
	}
}
