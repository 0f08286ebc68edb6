package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/metrics"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/maintenance"
)

// MaintenanceState reports the cached maintenance flag.
type MaintenanceState interface {
	Current(ctx context.Context) maintenance.State
}

var maintenanceBypass = []string{"/api/auth/", "/api/admin/"}

var maintenanceOpen = map[string]bool{
	"/health":              true,
	"/metrics":             true,
	"/api/settings/public": true,
}

// maintenanceToken also reads ?token= on websocket routes, where browsers
// cannot set an Authorization header.
func maintenanceToken(c *fiber.Ctx) string {
	if tok := requestToken(c); tok != "" {
		return tok
	}
	if strings.HasPrefix(c.Path(), "/ws/") {
		return c.Query("token")
	}
	return ""
}

// Maintenance answers 503 to everything but auth, admin and probe routes
// while maintenance mode is on. Admin credentials always pass.
func Maintenance(state MaintenanceState, secret string, users UserLoader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if maintenanceOpen[path] {
			return c.Next()
		}
		for _, prefix := range maintenanceBypass {
			if strings.HasPrefix(path, prefix) || path == strings.TrimSuffix(prefix, "/") {
				return c.Next()
			}
		}

		st := state.Current(c.UserContext())
		if !st.Enabled {
			return c.Next()
		}
		if tok := maintenanceToken(c); tok != "" {
			if u, err := Authenticate(c.UserContext(), secret, users, tok); err == nil && u.IsAdmin() {
				return c.Next()
			}
		}

		metrics.RecordMaintenanceRejection()
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success":     false,
			"maintenance": true,
			"message":     st.Message,
		})
	}
}
