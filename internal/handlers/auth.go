package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/middleware"
	"github.com/Windi-Fikriyansyah/platform_be_servicos/internal/services/auth"
)

type AuthHandler struct {
	Auth            *auth.Service
	Expires         int
	SecureCookie    bool
	FrontendBaseURL string
}

func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
		MaxAge:   h.Expires * 60,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req auth.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, token, err := h.Auth.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Cadastro realizado com sucesso",
		"token":   token,
		"data":    fiber.Map{"user": u},
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, token, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login realizado com sucesso",
		"token":   token,
		"data":    fiber.Map{"user": u},
	})
}

func (h *AuthHandler) clearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: "Lax",
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearTokenCookie(c)
	return respond(c, fiber.StatusOK, "Logout realizado com sucesso", nil)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	cur, err := currentUser(c)
	if err != nil {
		return err
	}
	u, err := h.Auth.Me(c.UserContext(), cur.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", fiber.Map{"user": u})
}

type updatePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	u, err := currentUser(c)
	if err != nil {
		return err
	}
	var req updatePasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.Auth.UpdatePassword(c.UserContext(), u, req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Senha atualizada com sucesso",
		"token":   token,
	})
}

type forgotPasswordReq struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := h.Auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	body := fiber.Map{
		"success": true,
		"message": "Instruções de redefinição enviadas para o seu email",
	}
	// only set outside production
	if token != "" {
		body["reset_token"] = token
	}
	return c.JSON(body)
}

type resetPasswordReq struct {
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordReq
	if err := parseBody(c, &req); err != nil {
		return err
	}

	u, token, err := h.Auth.ResetPassword(c.UserContext(), c.Params("token"), req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Senha redefinida com sucesso",
		"token":   token,
		"data":    fiber.Map{"user": u},
	})
}
