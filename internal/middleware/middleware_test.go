package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/apperr"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/models"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/maintenance"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/store/memstore"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/utils"
)

const secret = "test-secret"

func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if ae, ok := apperr.As(err); ok {
				switch ae.Kind {
				case apperr.KindUnauthorized:
					status = fiber.StatusUnauthorized
				case apperr.KindForbidden:
					status = fiber.StatusForbidden
				}
				return c.Status(status).JSON(fiber.Map{"success": false, "message": ae.Message})
			}
			return c.Status(status).JSON(fiber.Map{"success": false, "message": err.Error()})
		},
	})
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func seedUser(t *testing.T, st *memstore.Store, role models.Role, active bool) (*models.User, string) {
	t.Helper()
	u := &models.User{Name: string(role), Email: string(role) + "@example.com", Password: "x", Role: role, IsActive: true}
	if role == models.RoleProvider {
		u.Provider = models.ProviderProfile{Category: "Pintura", HourlyPrice: 40}
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	if !active {
		u.IsActive = false
		require.NoError(t, st.SaveUser(context.Background(), u))
	}
	tok, err := utils.SignJWT(secret, u.ID.String(), string(u.Role), 60)
	require.NoError(t, err)
	return u, tok
}

func TestProtect(t *testing.T) {
	st := memstore.New()
	_, tok := seedUser(t, st, models.RoleClient, true)
	_, inactiveTok := seedUser(t, st, models.RoleCompany, false)

	app := newApp()
	app.Get("/me", Protect(secret, st), func(c *fiber.Ctx) error {
		return c.SendString(CurrentUser(c).ID.String())
	})

	cases := []struct {
		name    string
		header  string
		cookie  string
		status  int
		message string
	}{
		{name: "no token", status: 401, message: "Não autorizado, token ausente"},
		{name: "garbage", header: "Bearer nope", status: 401, message: "Não autorizado, token inválido"},
		{name: "inactive", header: "Bearer " + inactiveTok, status: 401, message: "Conta desativada"},
		{name: "header", header: "Bearer " + tok, status: 200},
		{name: "cookie", cookie: tok, status: 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookie, Value: tc.cookie})
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
			if tc.message != "" {
				assert.Equal(t, tc.message, decode(t, resp)["message"])
			}
		})
	}

	st2 := memstore.New()
	ghostApp := newApp()
	ghostApp.Get("/me", Protect(secret, st2), func(c *fiber.Ctx) error { return nil })
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := ghostApp.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "Usuário não encontrado", decode(t, resp)["message"])
}

func TestRequireRoles(t *testing.T) {
	st := memstore.New()
	_, clientTok := seedUser(t, st, models.RoleClient, true)
	_, adminTok := seedUser(t, st, models.RoleAdmin, true)

	app := newApp()
	app.Get("/admin", Protect(secret, st), RequireRoles("admin"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/unprotected", RequireRoles("admin"), func(c *fiber.Ctx) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+clientTok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, "Você não tem permissão para acessar este recurso", decode(t, resp)["message"])

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/unprotected", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestMaintenance(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, clientTok := seedUser(t, st, models.RoleClient, true)
	_, adminTok := seedUser(t, st, models.RoleAdmin, true)

	s, err := st.GetSettings(ctx)
	require.NoError(t, err)
	s.MaintenanceMode = true
	s.MaintenanceMessage = "Voltamos às 18h"
	require.NoError(t, st.SaveSettings(ctx, s))

	app := newApp()
	app.Use(Maintenance(maintenance.NewCache(st, time.Minute), secret, st))
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/api/jobs", ok)
	app.Get("/api/auth/me", ok)
	app.Get("/api/admin/stats", ok)
	app.Get("/health", ok)
	app.Get("/api/settings/public", ok)

	get := func(path, tok string) *http.Response {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := get("/api/jobs", "")
	assert.Equal(t, 503, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, true, body["maintenance"])
	assert.Equal(t, "Voltamos às 18h", body["message"])

	assert.Equal(t, 503, get("/api/jobs", clientTok).StatusCode)
	assert.Equal(t, 200, get("/api/jobs", adminTok).StatusCode)
	for _, p := range []string{"/api/auth/me", "/api/admin/stats", "/health", "/api/settings/public"} {
		assert.Equal(t, 200, get(p, "").StatusCode, p)
	}
}

func TestMaintenance_WebSocketQueryToken(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	_, clientTok := seedUser(t, st, models.RoleClient, true)
	_, adminTok := seedUser(t, st, models.RoleAdmin, true)

	s, err := st.GetSettings(ctx)
	require.NoError(t, err)
	s.MaintenanceMode = true
	require.NoError(t, st.SaveSettings(ctx, s))

	app := newApp()
	app.Use(Maintenance(maintenance.NewCache(st, time.Minute), secret, st))
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }
	app.Get("/ws/chat", ok)
	app.Get("/api/jobs", ok)

	status := func(path string) int {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, 200, status("/ws/chat?token="+adminTok))
	assert.Equal(t, 503, status("/ws/chat?token="+clientTok))
	assert.Equal(t, 503, status("/ws/chat"))
	// query tokens are only honoured on websocket routes
	assert.Equal(t, 503, status("/api/jobs?token="+adminTok))
}

func TestMaintenance_Off(t *testing.T) {
	st := memstore.New()
	app := newApp()
	app.Use(Maintenance(maintenance.NewCache(st, time.Minute), secret, st))
	app.Get("/api/jobs", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	app := newApp()
	app.Post("/login", rl.Handler(), func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.Equal(t, "Muitas tentativas, aguarde um momento e tente novamente", decode(t, resp)["message"])
	assert.Equal(t, 1, rl.Len())
}

func TestRateLimiter_Cleanup(t *testing.T) {
	now := time.Now()
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.allow("10.0.0.1")
	now = now.Add(10 * time.Minute)
	rl.allow("10.0.0.2")

	assert.Equal(t, 1, rl.Cleanup(5*time.Minute))
	assert.Equal(t, 1, rl.Len())
	assert.Equal(t, 0, rl.Cleanup(5*time.Minute))
}
